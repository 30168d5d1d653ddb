package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/AppIemon/umm-sub002/internal/platform/tui"
)

var (
	flagLimit       int
	flagSong        string
	flagInteractive bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved levels and generation attempts",
	Long: `Display the most recently saved levels and overall attempt statistics.
With --song, list the attempt log of one song instead.

Examples:
  levelgen history
  levelgen history --limit 50
  levelgen history --song 9c1e04ab
  levelgen history -i`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 10, "Maximum rows to show")
	historyCmd.Flags().StringVar(&flagSong, "song", "", "Show the attempt log of a song key")
	historyCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse saved levels interactively")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if flagInteractive && isTerminal() {
		width, height := terminalSize()
		return tui.RunHistory(ctx, store, width, height)
	}

	if flagSong != "" {
		attempts, err := store.AttemptsForSong(ctx, flagSong, flagLimit)
		if err != nil {
			return err
		}
		fmt.Printf("Attempts - song %s\n", flagSong)
		fmt.Println()
		if len(attempts) == 0 {
			fmt.Println("No attempts recorded for this song.")
			return nil
		}
		fmt.Printf("  %-12s  %-3s  %-4s  %-7s  %-8s  %-10s  %s\n", "Seed", "#", "Diff", "Result", "Progress", "Time", "When")
		fmt.Printf("  %-12s  %-3s  %-4s  %-7s  %-8s  %-10s  %s\n", "----", "-", "----", "------", "--------", "----", "----")
		for _, a := range attempts {
			result := "failed"
			if a.Success {
				result = "ok"
			}
			fmt.Printf("  %-12d  %-3d  %-4d  %-7s  %7.0f%%  %-10s  %s\n",
				a.Seed, a.Offset+1, a.Difficulty, result, a.Progress*100, a.Elapsed.Round(time.Millisecond), humanize.Time(a.CreatedAt))
		}
		return nil
	}

	levels, err := store.RecentLevels(ctx, flagLimit)
	if err != nil {
		return err
	}

	fmt.Println("Saved Levels")
	fmt.Println()
	if len(levels) == 0 {
		fmt.Println("No levels saved yet.")
		fmt.Println()
		fmt.Println("Run 'levelgen generate <song.yaml> --save' to store one!")
	} else {
		fmt.Printf("  %-8s  %-20s  %-16s  %-12s  %-4s  %-5s  %s\n", "ID", "Song", "Key", "Seed", "Diff", "Tries", "Saved")
		fmt.Printf("  %-8s  %-20s  %-16s  %-12s  %-4s  %-5s  %s\n", "--", "----", "---", "----", "----", "-----", "-----")
		for _, l := range levels {
			fmt.Printf("  %-8s  %-20s  %-16s  %-12d  %-4d  %-5d  %s\n",
				truncate(l.ID, 8), truncate(l.Title, 20), l.SongKey, l.Seed, l.Difficulty, l.Attempts, humanize.Time(l.CreatedAt))
		}
	}

	stats, err := store.GetStats(ctx)
	if err != nil {
		return err
	}
	if stats.Attempts > 0 {
		fmt.Println()
		fmt.Printf("%s attempts, %s validated (%.0f%% average progress), last run %s\n",
			humanize.Comma(int64(stats.Attempts)), humanize.Comma(int64(stats.Successes)),
			stats.AvgProgress*100, humanize.Time(stats.LastRun))
	}
	return nil
}
