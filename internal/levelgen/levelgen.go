// Package levelgen runs the full generation pipeline: simulate a reference
// path from song timing, build terrain around it, and prove the result
// completable with the autoplay validator. Failed attempts are retried with
// the next seed offset.
package levelgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AppIemon/umm-sub002/internal/autoplay"
	"github.com/AppIemon/umm-sub002/internal/config"
	"github.com/AppIemon/umm-sub002/internal/core"
	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/pathsim"
	"github.com/AppIemon/umm-sub002/internal/song"
	"github.com/AppIemon/umm-sub002/internal/terrain"
)

// ErrGenerationFailed is returned when every attempt produced an
// unreachable level.
var ErrGenerationFailed = errors.New("levelgen: generation failed")

var errStopped = errors.New("levelgen: attempt stopped")

// Generator runs generation attempts. The zero value is not usable; set
// Config at least.
type Generator struct {
	Config   config.Config
	Logger   *log.Logger
	Recorder AttemptRecorder

	// OnProgress, when set, is called after every validator burst. It is
	// called from several goroutines by GenerateParallel.
	OnProgress func(offset int, p autoplay.Progress)
}

// New creates a generator with the given configuration and logger.
func New(cfg config.Config, logger *log.Logger) *Generator {
	return &Generator{Config: cfg, Logger: logger}
}

func (g *Generator) logger() *log.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return log.Default()
}

// Draft is a generated level waiting for validation.
type Draft struct {
	Level     *level.Level
	Validator *autoplay.Validator
	SongKey   string

	started time.Time
}

// Build runs the simulator and the terrain generator for one attempt and
// prepares a validator for the caller to pump.
func (g *Generator) Build(f song.Features, seed int64, offset int) (*Draft, error) {
	cfg := g.Config
	started := time.Now()

	res, err := pathsim.Simulate(cfg, f, seed, offset)
	if err != nil {
		return nil, err
	}
	out := terrain.Generate(cfg, terrain.Input{
		Path:    res.Path,
		Events:  res.Events,
		Beats:   res.Beats,
		Portals: res.Portals,
	}, core.MixSeed(seed, offset))
	g.logger().Debug("terrain built", "offset", offset,
		"obstacles", len(out.Obstacles), "hazards", len(out.Hazards), "portals", len(out.Portals))

	lvl := &level.Level{
		Seed:          seed,
		Offset:        offset,
		Difficulty:    cfg.Map.Difficulty,
		Duration:      res.Duration,
		Length:        res.Length,
		Events:        res.Events,
		Obstacles:     out.Obstacles,
		Portals:       out.Portals,
		ReferencePath: res.Path,
	}
	return &Draft{
		Level:     lvl,
		Validator: autoplay.New(cfg, lvl.Obstacles, lvl.Portals, lvl.Length),
		SongKey:   f.Key(),
		started:   started,
	}, nil
}

// Finish stores the validator's result in the level and numbers the
// attempt. On success the certified trace replaces the unverified reference
// path.
func (d *Draft) Finish() *level.Level {
	res := d.Validator.Result()
	d.Level.Validation = res.ValidationResult
	d.Level.Attempts = d.Level.Offset + 1
	if res.Success {
		d.Level.ReferencePath = res.Path
	}
	return d.Level
}

// Attempt returns the record of the finished draft.
func (d *Draft) Attempt() Attempt {
	v := d.Level.Validation
	return Attempt{
		SongKey:    d.SongKey,
		Seed:       d.Level.Seed,
		Offset:     d.Level.Offset,
		Difficulty: d.Level.Difficulty,
		Success:    v.Success,
		FailureX:   v.FailureX,
		FailureY:   v.FailureY,
		Iterations: v.Iterations,
		Progress:   v.Progress,
		Elapsed:    time.Since(d.started),
	}
}

// GenerateOffset runs exactly one attempt. An unreachable level is not an
// error: check Validation.Success on the returned level.
func (g *Generator) GenerateOffset(ctx context.Context, f song.Features, seed int64, offset int) (*level.Level, error) {
	d, err := g.attempt(ctx, f, seed, offset, nil)
	if err != nil {
		return nil, err
	}
	return d.Level, nil
}

func (g *Generator) attempt(ctx context.Context, f song.Features, seed int64, offset int, stop func() bool) (*Draft, error) {
	d, err := g.Build(f, seed, offset)
	if err != nil {
		return nil, err
	}
	burst := max(g.Config.Generation.StepBurst, 1)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stop != nil && stop() {
			return nil, errStopped
		}
		p := d.Validator.Step(burst)
		if g.OnProgress != nil {
			g.OnProgress(offset, p)
		}
		if p.Done {
			break
		}
	}
	d.Finish()
	return d, nil
}

// Complete finishes a draft whose validator is done and hands the attempt
// to the recorder.
func (g *Generator) Complete(ctx context.Context, d *Draft) *level.Level {
	l := d.Finish()
	g.record(ctx, d)
	return l
}

// Generate runs attempts with offsets 0, 1, ... and returns the first level
// that validates. When every attempt fails the last level is returned with
// an error wrapping ErrGenerationFailed.
func (g *Generator) Generate(ctx context.Context, f song.Features, seed int64) (*level.Level, error) {
	if err := g.Config.Validate(); err != nil {
		return nil, err
	}
	attempts := g.Config.Generation.MaxAttempts
	logger := g.logger()

	var last *level.Level
	for offset := 0; offset < attempts; offset++ {
		d, err := g.attempt(ctx, f, seed, offset, nil)
		if err != nil {
			return nil, err
		}
		g.record(ctx, d)
		last = d.Level
		if last.Validation.Success {
			logger.Info("level validated", "seed", seed, "attempt", offset+1,
				"obstacles", len(last.Obstacles), "iterations", last.Validation.Iterations)
			return last, nil
		}
		g.logFailure(offset, last, attempts)
	}
	return last, g.exhausted(attempts)
}

func (g *Generator) logFailure(offset int, l *level.Level, attempts int) {
	if offset+1 >= attempts {
		return
	}
	v := l.Validation
	g.logger().Warn(fmt.Sprintf("generation attempt %d failed, retrying", offset+1),
		"x", fmt.Sprintf("%.0f", v.FailureX), "y", fmt.Sprintf("%.0f", v.FailureY),
		"progress", fmt.Sprintf("%.0f%%", v.Progress*100), "nearby", len(v.NearbyObstacles))
}

func (g *Generator) exhausted(attempts int) error {
	g.logger().Error(fmt.Sprintf("generation failed after %d attempts", attempts))
	return fmt.Errorf("%w after %d attempts", ErrGenerationFailed, attempts)
}

func (g *Generator) record(ctx context.Context, d *Draft) {
	if g.Recorder == nil {
		return
	}
	if err := g.Recorder.RecordAttempt(ctx, d.Attempt()); err != nil {
		g.logger().Warn("cannot record attempt", "error", err)
	}
}
