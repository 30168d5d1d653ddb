package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AppIemon/umm-sub002/internal/autoplay"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <level-id>",
	Short: "Regenerate a saved level and check it",
	Long: `Regenerate a saved level from its stored song, config and seed, check
that the result matches the saved fingerprint, and replay the validated
path against the geometry.

Examples:
  levelgen verify 3f2a9c1e`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	store, rec, err := loadRecord(ctx, args[0])
	if err != nil {
		return err
	}
	defer store.Close()

	l, cfg, err := regenerate(ctx, rec)
	if err != nil {
		return err
	}

	fmt.Printf("Level %s (%s)\n", truncate(rec.ID, 8), rec.Title)
	ok := true

	if fp := l.Fingerprint(); fp == rec.Fingerprint {
		fmt.Println("  fingerprint  ok")
	} else {
		fmt.Printf("  fingerprint  MISMATCH (saved %s, got %s)\n", truncate(rec.Fingerprint, 16), truncate(fp, 16))
		ok = false
	}

	if !l.Validation.Success {
		fmt.Printf("  validation   FAILED at x=%.0f y=%.0f\n", l.Validation.FailureX, l.Validation.FailureY)
		ok = false
	} else if i := autoplay.Replay(cfg, l.Obstacles, l.Portals, l.ReferencePath); i >= 0 {
		p := l.ReferencePath[i]
		fmt.Printf("  replay       COLLISION at point %d (x=%.0f y=%.0f)\n", i, p.X, p.Y)
		ok = false
	} else {
		fmt.Printf("  replay       ok (%d points)\n", len(l.ReferencePath))
	}

	if !ok {
		return errors.New("level verification failed")
	}
	logger.Debug("level verified", "id", rec.ID, "iterations", l.Validation.Iterations)
	return nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
