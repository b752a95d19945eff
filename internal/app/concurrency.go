package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Parallel2 runs two loads at once, such as the quote list and the saved
// filter at startup. When one fails the other's context is cancelled and
// both results are zero.
func Parallel2[A, B any](
	ctx context.Context,
	loadA func(context.Context) (A, error),
	loadB func(context.Context) (B, error),
) (A, B, error) {
	var (
		a A
		b B
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		a, err = loadA(gctx)
		return err
	})
	g.Go(func() (err error) {
		b, err = loadB(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		var (
			zeroA A
			zeroB B
		)

		return zeroA, zeroB, fmt.Errorf("parallel load: %w", err)
	}

	return a, b, nil
}
