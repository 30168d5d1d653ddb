// levelgen builds rhythm-platformer levels from song timing files and proves
// every level completable before handing it out.
//
// Usage:
//
//	levelgen generate <song.yaml>   - Generate and validate a level
//	levelgen preview <level-id>     - Draw a saved level in the terminal
//	levelgen verify <level-id>      - Regenerate a saved level and check it
//	levelgen history                - List saved levels and attempt stats
//	levelgen hazards                - List registered hazards
//	levelgen config                 - Print the effective configuration
//
// Global flags:
//
//	--seed <value>      - Set RNG seed for reproducible levels
//	--db <path>         - Set database path (default: ~/.levelgen/levels.db)
//	--config <path>     - Set generator config YAML
//	--log-level <level> - Set log level (debug, info, warn, error)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	// Import hazards to register them
	_ "github.com/AppIemon/umm-sub002/internal/terrain"
)

var (
	// Global flags
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagLogLevel string

	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "levelgen",
	Short: "Levelgen - Rhythm-platformer level generator",
	Long: `Levelgen turns song timing (beats, sections, BPM) into wave-style
platformer levels and validates each level with an autoplay search before
accepting it.

Available commands:
  generate - Generate a level from a song timing file
  preview  - Draw a saved level
  verify   - Regenerate a saved level and compare it
  history  - List saved levels and generation attempts
  hazards  - List registered hazards
  config   - Print the effective configuration

Examples:
  levelgen generate song.yaml --seed 42
  levelgen generate song.yaml --preset hard --parallel 4 --save
  levelgen generate song.yaml --tui --preview
  levelgen history
  levelgen verify 3f2a9c1e`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(flagLogLevel)
		if err != nil {
			return err
		}
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "levelgen",
			Level:           level,
		})
		return nil
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.levelgen/levels.db", "Path to levels database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to generator config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(hazardsCmd)
	rootCmd.AddCommand(configCmd)
}
