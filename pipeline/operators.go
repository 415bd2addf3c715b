package pipeline

import "context"

// Filter keeps values for which keep returns true.
func Filter[T any](p *Pipeline[T], keep func(T) bool) *Pipeline[T] {
	return FromFunc(func(ctx context.Context) Iterator[T] {
		src := p.create(ctx)
		return Func(func(ctx context.Context) (T, bool, error) {
			for {
				v, ok, err := src.Next(ctx)
				if err != nil || !ok {
					return v, ok, err
				}
				if keep(v) {
					return v, true, nil
				}
			}
		}, src.Close)
	})
}
