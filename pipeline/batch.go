package pipeline

import "context"

// Batch groups consecutive values into slices of at most size. A partial
// batch is emitted at the end of the stream, and before an error, which is
// then returned by the following Next.
func Batch[T any](p *Pipeline[T], size int) *Pipeline[[]T] {
	if size <= 0 {
		size = 1
	}
	return FromFunc(func(ctx context.Context) Iterator[[]T] {
		src := p.create(ctx)
		var pending error
		return Func(func(ctx context.Context) ([]T, bool, error) {
			if pending != nil {
				err := pending
				pending = nil
				return nil, false, err
			}
			batch := make([]T, 0, size)
			for len(batch) < size {
				v, ok, err := src.Next(ctx)
				if err != nil {
					if len(batch) > 0 {
						pending = err
						return batch, true, nil
					}
					return nil, false, err
				}
				if !ok {
					break
				}
				batch = append(batch, v)
			}
			if len(batch) == 0 {
				return nil, false, nil
			}
			return batch, true, nil
		}, src.Close)
	})
}
