package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Load3 runs three loaders at once and returns when all are done. The first
// error cancels the context seen by the others and is returned alone.
func Load3[A, B, C any](
	ctx context.Context,
	loadA func(context.Context) (A, error),
	loadB func(context.Context) (B, error),
	loadC func(context.Context) (C, error),
) (a A, b B, c C, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { a, err = loadA(gctx); return })
	g.Go(func() (err error) { b, err = loadB(gctx); return })
	g.Go(func() (err error) { c, err = loadC(gctx); return })

	if err = g.Wait(); err != nil {
		var (
			za A
			zb B
			zc C
		)

		return za, zb, zc, fmt.Errorf("concurrent load: %w", err)
	}

	return a, b, c, nil
}

// Outcome is what one task passed to Settle produced.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Settle runs tasks with at most limit in flight and waits for every one of
// them. A failing task does not stop the rest. Outcomes keep task order.
func Settle[T any](ctx context.Context, limit int, tasks ...func(context.Context) (T, error)) []Outcome[T] {
	out := make([]Outcome[T], len(tasks))

	var g errgroup.Group
	g.SetLimit(max(limit, 1))

	for i, task := range tasks {
		g.Go(func() error {
			v, err := task(ctx)
			out[i] = Outcome[T]{Value: v, Err: err}

			return nil
		})
	}

	_ = g.Wait()

	return out
}
