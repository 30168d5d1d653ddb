package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/AppIemon/umm-sub002/internal/config"
	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/platform/tui"
	"github.com/AppIemon/umm-sub002/internal/song"
	"github.com/AppIemon/umm-sub002/internal/storage"
)

var (
	flagDifficulty int
	flagPreset     string
	flagAttempts   int
	flagParallel   int
	flagTUI        bool
	flagWatch      bool
	flagSave       bool
	flagPreview    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <song.yaml>",
	Short: "Generate a level from a song timing file",
	Long: `Simulate a reference path from the song's beats, build terrain around
it and validate the result with the autoplay search. Failed attempts are
retried with the next seed offset.

Difficulty options:
  easy   - Difficulty 5, fewer state changes
  normal - Difficulty 12
  hard   - Difficulty 22, more state changes and a larger search budget
  fixed  - Keep the configured difficulty

Examples:
  levelgen generate song.yaml --seed 42
  levelgen generate song.yaml --difficulty 18 --attempts 8
  levelgen generate song.yaml --preset hard --parallel 4 --save
  levelgen generate song.yaml --tui --preview
  levelgen generate song.yaml --watch --config ./levelgen.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&flagDifficulty, "difficulty", 0, "Map difficulty 1-30 (0 = from config)")
	generateCmd.Flags().StringVar(&flagPreset, "preset", "", "Difficulty preset: easy, normal, hard, fixed")
	generateCmd.Flags().IntVar(&flagAttempts, "attempts", 0, "Maximum generation attempts (0 = from config)")
	generateCmd.Flags().IntVar(&flagParallel, "parallel", 1, "Attempts to validate concurrently (0 = from config)")
	generateCmd.Flags().BoolVar(&flagTUI, "tui", false, "Show an interactive progress screen")
	generateCmd.Flags().BoolVar(&flagWatch, "watch", false, "Regenerate when the song or config file changes")
	generateCmd.Flags().BoolVar(&flagSave, "save", false, "Save the validated level to the database")
	generateCmd.Flags().BoolVar(&flagPreview, "preview", false, "Print a preview of the level")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	songPath := args[0]
	seed := resolveSeed()

	// Open level storage; attempts are logged only when it is available
	store, err := openStore()
	if err != nil {
		if flagSave {
			return err
		}
		logger.Warn("continuing without attempt log", "error", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	err = generateOnce(ctx, songPath, seed, store)
	if !flagWatch {
		return err
	}
	if err != nil {
		logger.Error("generation failed", "error", err)
	}
	return watchAndRegenerate(ctx, songPath, seed, store)
}

// generateOnce loads the inputs, runs generation and reports the level.
func generateOnce(ctx context.Context, songPath string, seed int64, store *storage.Store) error {
	f, err := song.LoadFile(songPath)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(flagPreset, flagDifficulty, flagAttempts)
	if err != nil {
		return err
	}
	if f.Title == "" {
		f.Title = filepath.Base(songPath)
	}

	logger.Info("generating level", "song", f.Title, "seed", seed,
		"difficulty", cfg.Map.Difficulty, "attempts", cfg.Generation.MaxAttempts)

	g := newGenerator(cfg, store)
	var l *level.Level
	switch {
	case flagTUI && isTerminal():
		l, err = tui.Run(ctx, g, f, seed, tui.Options{ShowPreview: flagPreview})
	default:
		workers := flagParallel
		if workers == 0 {
			workers = cfg.Generation.Workers
		}
		l, err = g.GenerateParallel(ctx, f, seed, workers)
	}
	if err != nil {
		if l != nil && flagPreview {
			printPreview(cfg, l)
		}
		return err
	}

	printSummary(l)
	if flagPreview {
		printPreview(cfg, l)
	}
	if flagSave && store != nil {
		id, err := saveLevel(ctx, store, l, f, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Saved as %s\n", id)
	}
	return nil
}

// watchAndRegenerate reruns generation whenever the song or the config
// file changes, until the context is cancelled.
func watchAndRegenerate(ctx context.Context, songPath string, seed int64, store *storage.Store) error {
	files := []string{songPath}
	if flagConfig != "" {
		files = append(files, flagConfig)
	}
	w, err := config.Watch(files...)
	if err != nil {
		return err
	}
	defer w.Close()

	watched := make(map[string]bool, len(files))
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			watched[abs] = true
		}
	}

	logger.Info("watching for changes", "files", files)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case name, ok := <-w.Events:
			if !ok {
				return nil
			}
			if abs, err := filepath.Abs(name); err != nil || !watched[abs] {
				continue
			}
			logger.Info("file changed, regenerating", "file", name)
			if err := generateOnce(ctx, songPath, seed, store); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logger.Error("generation failed", "error", err)
			}
		}
	}
}

func printSummary(l *level.Level) {
	v := l.Validation
	fmt.Printf("Level validated after %d %s\n", l.Attempts, pluralize(l.Attempts, "attempt", "attempts"))
	fmt.Println()
	fmt.Printf("  %-12s %d (offset %d)\n", "Seed", l.Seed, l.Offset)
	fmt.Printf("  %-12s %d\n", "Difficulty", l.Difficulty)
	fmt.Printf("  %-12s %.1fs, %s units\n", "Length", l.Duration, humanize.Comma(int64(l.Length)))
	fmt.Printf("  %-12s %d\n", "Obstacles", len(l.Obstacles))
	fmt.Printf("  %-12s %d\n", "Portals", len(l.Portals))
	fmt.Printf("  %-12s %s\n", "Iterations", humanize.Comma(int64(v.Iterations)))
	fmt.Printf("  %-12s %s\n", "Fingerprint", truncate(l.Fingerprint(), 16))
	fmt.Println()
}

func printPreview(cfg config.Config, l *level.Level) {
	width, _ := terminalSize()
	p := tui.Preview{Config: cfg, Level: l}
	if isTerminal() {
		fmt.Println(p.Render(width, previewRows, tui.DefaultTheme()))
	} else {
		fmt.Println(p.Draw(width, previewRows).String())
	}
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
