package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AppIemon/umm-sub002/internal/config"
	"github.com/AppIemon/umm-sub002/internal/registry"
)

var hazardsCmd = &cobra.Command{
	Use:   "hazards",
	Short: "List all registered hazards",
	Long:  `Shows every hazard the terrain generator can place, with its placement, pool and the lowest difficulty tier it appears in.`,
	Args:  cobra.NoArgs,
	RunE:  runHazards,
}

func runHazards(cmd *cobra.Command, args []string) error {
	hazards := registry.List()

	if len(hazards) == 0 {
		fmt.Println("No hazards registered.")
		return nil
	}

	fmt.Println("Registered hazards:")
	fmt.Println()

	// widest ID sets the first column
	maxIDLen := 2 // "ID" header
	for _, h := range hazards {
		if len(h.ID) > maxIDLen {
			maxIDLen = len(h.ID)
		}
	}

	fmt.Printf("  %-*s  %-18s  %-9s  %-8s  %s\n", maxIDLen, "ID", "Title", "Placement", "Pool", "Tier")
	fmt.Printf("  %-*s  %-18s  %-9s  %-8s  %s\n", maxIDLen, "--", "-----", "---------", "----", "----")

	for _, h := range hazards {
		fmt.Printf("  %-*s  %-18s  %-9s  %-8s  %d+\n", maxIDLen, h.ID, h.Title, h.Placement, h.Pool, h.MinTier)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(tierLegend(config.NewDifficultyManager(cfg.Difficulty)))
	return nil
}

// tierLegend lists the difficulty range of every tier.
func tierLegend(dm *config.DifficultyManager) string {
	parts := make([]string, 0, dm.Tiers())
	for tier := range dm.Tiers() {
		lo, hi := dm.TierRange(tier)
		parts = append(parts, fmt.Sprintf("%d = difficulty %d-%d", tier, lo, hi))
	}
	return "Tiers: " + strings.Join(parts, ", ")
}
