package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/AppIemon/umm-sub002/internal/config"
	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/levelgen"
	"github.com/AppIemon/umm-sub002/internal/song"
	"github.com/AppIemon/umm-sub002/internal/storage"
)

// signalContext returns a context cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// resolveSeed returns the --seed flag, or a time-based seed when unset.
func resolveSeed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	seed := time.Now().UnixNano()
	logger.Info("using random seed", "seed", seed)
	return seed
}

// loadConfig loads the generator config and applies command-line overrides.
// A zero difficulty or attempts value keeps the configured one.
func loadConfig(preset string, difficulty, attempts int) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if preset != "" {
		p, err := config.ParsePreset(preset)
		if err != nil {
			return config.Config{}, err
		}
		config.ApplyPreset(&cfg, p)
	}
	if difficulty != 0 {
		cfg.Map.Difficulty = difficulty
	}
	if attempts != 0 {
		cfg.Generation.MaxAttempts = attempts
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newGenerator creates a generator that records attempts into store when
// it is not nil.
func newGenerator(cfg config.Config, store *storage.Store) *levelgen.Generator {
	g := levelgen.New(cfg, logger)
	if store != nil {
		g.Recorder = store
	}
	return g
}

// openStore opens the levels database. Generation works without one, so
// callers that only record attempts may treat a failure as a warning.
func openStore() (*storage.Store, error) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, fmt.Errorf("could not open levels database: %w", err)
	}
	return store, nil
}

// loadRecord opens the store and finds a saved level by id or id prefix.
func loadRecord(ctx context.Context, id string) (*storage.Store, *storage.LevelRecord, error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	rec, err := store.LevelByID(ctx, id)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	if rec == nil {
		store.Close()
		return nil, nil, fmt.Errorf("no saved level matches %q", id)
	}
	return store, rec, nil
}

// regenerate rebuilds a saved level from its stored song and config.
func regenerate(ctx context.Context, rec *storage.LevelRecord) (*level.Level, config.Config, error) {
	f, err := song.ParseYAML(rec.SongYAML)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("stored song: %w", err)
	}
	cfg, err := config.Parse(rec.ConfigYAML)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("stored config: %w", err)
	}
	l, err := levelgen.New(cfg, logger).GenerateOffset(ctx, f, rec.Seed, rec.Offset)
	if err != nil {
		return nil, config.Config{}, err
	}
	return l, cfg, nil
}

// saveLevel stores a validated level together with the inputs needed to
// regenerate it.
func saveLevel(ctx context.Context, store *storage.Store, l *level.Level, f song.Features, cfg config.Config) (string, error) {
	if !l.Validation.Success {
		return "", errors.New("refusing to save an unvalidated level")
	}
	songYAML, err := song.MarshalYAML(f)
	if err != nil {
		return "", err
	}
	cfgYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	title := f.Title
	if title == "" {
		title = "untitled"
	}
	return store.SaveLevel(ctx, storage.NewLevelRecord(l, title, f.Key(), songYAML, cfgYAML))
}

// terminalSize returns the size of stdout, or 80x24 when it is not a terminal.
func terminalSize() (int, int) {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return width, height
}

// isTerminal reports whether stdout is an interactive terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
