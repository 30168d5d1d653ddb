package levelgen

import (
	"context"
	"errors"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/song"
)

// GenerateParallel runs up to workers attempts at a time and returns the
// successful level with the lowest offset, which is the level Generate
// would return. Attempts above a known success are abandoned.
func (g *Generator) GenerateParallel(ctx context.Context, f song.Features, seed int64, workers int) (*level.Level, error) {
	if err := g.Config.Validate(); err != nil {
		return nil, err
	}
	if workers <= 1 {
		return g.Generate(ctx, f, seed)
	}
	attempts := g.Config.Generation.MaxAttempts
	drafts := make([]*Draft, attempts)

	var best atomic.Int64
	best.Store(math.MaxInt64)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for offset := 0; offset < attempts; offset++ {
		stop := func() bool { return best.Load() < int64(offset) }
		eg.Go(func() error {
			if stop() {
				return nil
			}
			d, err := g.attempt(egCtx, f, seed, offset, stop)
			if errors.Is(err, errStopped) {
				return nil
			}
			if err != nil {
				return err
			}
			drafts[offset] = d
			if d.Level.Validation.Success {
				for {
					cur := best.Load()
					if int64(offset) >= cur || best.CompareAndSwap(cur, int64(offset)) {
						break
					}
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Report in offset order so logs and records match a sequential run.
	var last *level.Level
	for offset, d := range drafts {
		if d == nil {
			break
		}
		g.record(ctx, d)
		last = d.Level
		if last.Validation.Success {
			g.logger().Info("level validated", "seed", seed, "attempt", offset+1,
				"obstacles", len(last.Obstacles), "iterations", last.Validation.Iterations)
			return last, nil
		}
		g.logFailure(offset, last, attempts)
	}
	return last, g.exhausted(attempts)
}
