// Package resilience provides execution lanes for serializing access to
// model backends and retry with exponential backoff for sidecar calls.
package resilience

import (
	"context"
	"errors"
	"time"
)

// ErrLaneWaitTimeout is returned when a caller waited longer than the lane's
// QueueTimeout for a free slot.
var ErrLaneWaitTimeout = errors.New("lane wait timeout")

// LaneConfig configures a Lane.
type LaneConfig struct {
	// Name identifies the lane in logs.
	Name string
	// Slots is the number of calls allowed to run at once. Defaults to 1.
	Slots int
	// QueueTimeout bounds how long a caller waits for a slot. Zero waits
	// until the caller's context is done.
	QueueTimeout time.Duration
}

// Lane is a bulkhead whose callers queue for a slot instead of being
// rejected. With one slot it serializes every call through it, which is how
// model instances that are not safe for concurrent inference are guarded.
type Lane struct {
	cfg LaneConfig
	sem chan struct{}
}

// NewLane creates a lane.
func NewLane(cfg LaneConfig) *Lane {
	if cfg.Slots <= 0 {
		cfg.Slots = 1
	}
	return &Lane{cfg: cfg, sem: make(chan struct{}, cfg.Slots)}
}

// Do runs fn once a slot is free.
func (l *Lane) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := l.acquire(ctx); err != nil {
		return err
	}
	defer l.release()
	return fn(ctx)
}

// DoValue runs fn in the lane and returns its value.
func DoValue[T any](ctx context.Context, l *Lane, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := l.Do(ctx, func(ctx context.Context) error {
		var fnErr error
		result, fnErr = fn(ctx)
		return fnErr
	})
	return result, err
}

func (l *Lane) acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	default:
	}

	var timeout <-chan time.Time
	if l.cfg.QueueTimeout > 0 {
		timer := time.NewTimer(l.cfg.QueueTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case l.sem <- struct{}{}:
		return nil
	case <-timeout:
		return ErrLaneWaitTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Lane) release() { <-l.sem }

// InUse returns the number of occupied slots.
func (l *Lane) InUse() int { return len(l.sem) }

// Slots returns the lane width.
func (l *Lane) Slots() int { return l.cfg.Slots }

// Name returns the lane name.
func (l *Lane) Name() string { return l.cfg.Name }
