package pipeline

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Next after Close.
var ErrClosed = errors.New("pipeline: iterator closed")

// Iterator provides pull-based sequential access to a finite stream.
// Next returns (zero, false, nil) once exhausted. Close releases resources
// and may be called at any time, including before exhaustion; it is
// idempotent.
type Iterator[T any] interface {
	Next(ctx context.Context) (T, bool, error)
	Close() error
}

// Func adapts a next function and an optional close hook into an Iterator.
// After Close, next is never called again.
func Func[T any](next func(ctx context.Context) (T, bool, error), closeFn func() error) Iterator[T] {
	return &funcIter[T]{next: next, closeFn: closeFn}
}

type funcIter[T any] struct {
	mu      sync.Mutex
	next    func(ctx context.Context) (T, bool, error)
	closeFn func() error
	closed  bool
	done    bool
}

func (it *funcIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	it.mu.Lock()
	closed, done := it.closed, it.done
	it.mu.Unlock()
	if closed {
		return zero, false, ErrClosed
	}
	if done {
		return zero, false, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	v, ok, err := it.next(ctx)
	if !ok && err == nil {
		it.mu.Lock()
		it.done = true
		it.mu.Unlock()
	}
	return v, ok, err
}

func (it *funcIter[T]) Close() error {
	it.mu.Lock()
	if it.closed {
		it.mu.Unlock()
		return nil
	}
	it.closed = true
	it.mu.Unlock()

	if it.closeFn != nil {
		return it.closeFn()
	}
	return nil
}

// Slice returns an Iterator over items.
func Slice[T any](items []T) Iterator[T] {
	i := 0
	return Func(func(context.Context) (T, bool, error) {
		if i >= len(items) {
			var zero T
			return zero, false, nil
		}
		v := items[i]
		i++
		return v, true, nil
	}, nil)
}

// Single returns an Iterator yielding exactly v.
func Single[T any](v T) Iterator[T] {
	return Slice([]T{v})
}

// Empty returns an exhausted Iterator.
func Empty[T any]() Iterator[T] {
	return Slice[T](nil)
}

// Drain pulls every value from it, calls fn for each and closes it.
func Drain[T any](ctx context.Context, it Iterator[T], fn func(context.Context, T) error) (err error) {
	defer func() {
		if cerr := it.Close(); err == nil {
			err = cerr
		}
	}()
	for {
		v, ok, nerr := it.Next(ctx)
		if nerr != nil {
			return nerr
		}
		if !ok {
			return nil
		}
		if err := fn(ctx, v); err != nil {
			return err
		}
	}
}

// CollectIter drains it into a slice.
func CollectIter[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	var out []T
	err := Drain(ctx, it, func(_ context.Context, v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}
