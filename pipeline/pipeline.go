// Package pipeline provides lazy, pull-based streams. Work happens only when
// a consumer calls Next, so closing an iterator early stops further
// production and context cancellation reaches whatever Next is running.
package pipeline

import "context"

// Pipeline is a lazy, re-creatable description of a stream.
type Pipeline[T any] struct {
	create func(ctx context.Context) Iterator[T]
}

// From creates a pipeline over an existing iterator. The result can be
// iterated once.
func From[T any](it Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{create: func(context.Context) Iterator[T] { return it }}
}

// FromSlice creates a pipeline over items.
func FromSlice[T any](items []T) *Pipeline[T] {
	return &Pipeline[T]{create: func(context.Context) Iterator[T] { return Slice(items) }}
}

// FromFunc creates a pipeline from an iterator factory.
func FromFunc[T any](fn func(ctx context.Context) Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{create: fn}
}

// Iter returns the pipeline's iterator. The caller must Close it.
func (p *Pipeline[T]) Iter(ctx context.Context) Iterator[T] {
	return p.create(ctx)
}

// Collect runs the pipeline and returns all values.
func Collect[T any](ctx context.Context, p *Pipeline[T]) ([]T, error) {
	return CollectIter(ctx, p.create(ctx))
}

// ForEach runs the pipeline and calls fn for each value.
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) error) error {
	return Drain(ctx, p.create(ctx), fn)
}
