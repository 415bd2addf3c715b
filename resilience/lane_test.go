package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLaneSerializesCalls(t *testing.T) {
	lane := NewLane(LaneConfig{Name: "diarizer"})
	if lane.Slots() != 1 {
		t.Fatalf("default slots = %d, want 1", lane.Slots())
	}

	var active, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := lane.Do(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&active, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
			if err != nil {
				t.Errorf("Do: %v", err)
			}
		}()
	}
	wg.Wait()

	if peak != 1 {
		t.Errorf("peak concurrency = %d, want 1", peak)
	}
}

func TestLaneQueueTimeout(t *testing.T) {
	lane := NewLane(LaneConfig{Slots: 1, QueueTimeout: 10 * time.Millisecond})
	release := make(chan struct{})
	started := make(chan struct{})
	go lane.Do(context.Background(), func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started
	defer close(release)

	err := lane.Do(context.Background(), func(ctx context.Context) error { return nil })
	if !errors.Is(err, ErrLaneWaitTimeout) {
		t.Fatalf("expected ErrLaneWaitTimeout, got %v", err)
	}
}

func TestLaneWaitHonorsContext(t *testing.T) {
	lane := NewLane(LaneConfig{Slots: 1})
	release := make(chan struct{})
	started := make(chan struct{})
	go lane.Do(context.Background(), func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := lane.Do(ctx, func(ctx context.Context) error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestDoValue(t *testing.T) {
	lane := NewLane(LaneConfig{Slots: 2})
	v, err := DoValue(context.Background(), lane, func(ctx context.Context) (string, error) {
		return "text", nil
	})
	if err != nil || v != "text" {
		t.Fatalf("got %q, %v", v, err)
	}
	if lane.InUse() != 0 {
		t.Errorf("slot not released, in use = %d", lane.InUse())
	}
}
