package sim

import (
	"context"
	"fmt"
	"runtime"

	"github.com/df07/go-collision-demos/pkg/config"
	"golang.org/x/sync/errgroup"
)

// SweepResult summarizes one seed of a sweep
type SweepResult struct {
	Seed   int64  `json:"seed"`
	Ticks  uint64 `json:"ticks"`
	Digest string `json:"digest"`
	// Hits counts hit flags observed across all ticks, spheres and triangles
	Hits int `json:"hits"`
}

// Sweep runs the configured demo once per seed for the given number of ticks,
// spreading seeds over at most workers goroutines. Each demo is still driven
// by a single goroutine. Results come back in seed order.
func Sweep(ctx context.Context, cfg config.DemoConfig, seeds []int64, ticks, workers int) ([]SweepResult, error) {
	if ticks <= 0 {
		return nil, fmt.Errorf("ticks must be positive, got %d", ticks)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	// Fail fast on a bad name before starting any workers
	if _, err := New(cfg, nil); err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(seeds))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			c := cfg
			c.Seed = seed
			res, err := sweepOne(ctx, c, ticks)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func sweepOne(ctx context.Context, cfg config.DemoConfig, ticks int) (SweepResult, error) {
	demo, err := New(cfg, nil)
	if err != nil {
		return SweepResult{}, err
	}

	res := SweepResult{Seed: cfg.Seed}
	runner := NewRunner(demo, RunnerOptions{MaxTicks: ticks, Unpaced: true})
	err = runner.Run(ctx, func(snap Snapshot) error {
		res.Ticks = snap.Tick
		res.Digest = snap.Digest
		for _, s := range snap.Spheres {
			if s.Hit {
				res.Hits++
			}
		}
		for _, t := range snap.Triangles {
			if t.Hit {
				res.Hits++
			}
		}
		return nil
	})
	return res, err
}
