package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome is what one call made by MapLimit produced.
type Outcome[T any] struct {
	Value T
	Err   error
}

// MapLimit calls fn for every item with at most limit calls in flight and
// returns the outcomes in item order. A failed call does not stop the
// others. Items not yet started when ctx is done are not passed to fn; their
// outcome carries ctx.Err().
func MapLimit[In, Out any](ctx context.Context, limit int, items []In, fn func(context.Context, In) (Out, error)) []Outcome[Out] {
	out := make([]Outcome[Out], len(items))

	var g errgroup.Group
	g.SetLimit(max(limit, 1))

	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}

			out[i].Value, out[i].Err = fn(ctx, item)

			return nil
		})
	}

	_ = g.Wait()

	return out
}
