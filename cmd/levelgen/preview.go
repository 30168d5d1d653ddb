package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AppIemon/umm-sub002/internal/platform/tui"
)

const previewRows = 16

var (
	flagRows  int
	flagFrom  float64
	flagTo    float64
	flagPlain bool
)

var previewCmd = &cobra.Command{
	Use:   "preview <level-id>",
	Short: "Draw a saved level in the terminal",
	Long: `Regenerate a saved level from its seed and draw it as ASCII art.

Legend:
  #  terrain      ^  hazard      *  moving hazard
  o  decoration   |  portal      .  reference path

Examples:
  levelgen preview 3f2a9c1e
  levelgen preview 3f2a9c1e --from 0 --to 3000 --rows 24`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntVar(&flagRows, "rows", previewRows, "Preview height in rows")
	previewCmd.Flags().Float64Var(&flagFrom, "from", 0, "Left edge of the window in world units")
	previewCmd.Flags().Float64Var(&flagTo, "to", 0, "Right edge of the window (0 = whole level)")
	previewCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print without colors")
}

func runPreview(cmd *cobra.Command, args []string) error {
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

	width, _ := terminalSize()
	p := tui.Preview{Config: cfg, Level: l, From: flagFrom, To: flagTo}

	fmt.Printf("%s  seed %d  difficulty %d  %d obstacles\n", rec.Title, rec.Seed, rec.Difficulty, len(l.Obstacles))
	if flagPlain || !isTerminal() {
		fmt.Println(p.Draw(width, flagRows).String())
		return nil
	}
	fmt.Println(p.Render(width, flagRows, tui.DefaultTheme()))
	return nil
}
