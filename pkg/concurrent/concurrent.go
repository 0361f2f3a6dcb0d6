package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/skyrun/pkg/sequence"
)

// ForEach runs fn for each element with at most limit goroutines in flight.
// The context passed to fn is cancelled as soon as one call fails. A limit
// below one means no limit.
func ForEach[T any](ctx context.Context, i *sequence.Iterator[T], limit int, fn func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for value := range i.Seq() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return fn(gctx, value)
		})
	}
	return g.Wait()
}

// ParallelMap applies mapFn to each element with at most workers goroutines,
// preserving input order. On error the partial results are discarded.
func ParallelMap[T any, R any](ctx context.Context, i *sequence.Iterator[T], workers int, mapFn func(context.Context, T) (R, error)) ([]R, error) {
	in := i.Collect()
	out := make([]R, len(in))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for idx, value := range in {
		g.Go(func() error {
			r, err := mapFn(gctx, value)
			if err != nil {
				return err
			}
			out[idx] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
