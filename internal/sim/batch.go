package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RunBatch runs independent simulations concurrently, at most limit at a
// time (GOMAXPROCS when limit <= 0). Results keep the order of configs.
// A failed run is reported in its result; only ctx cancellation aborts
// the batch.
func RunBatch(ctx context.Context, configs []SimulationConfig, limit int) ([]*SimulationResult, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	results := make([]*SimulationResult, len(configs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, cfg := range configs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, _ := RunSimulation(ctx, cfg)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
