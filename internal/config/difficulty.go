package config

import "math"

// DifficultyConfig defines how the 1..30 difficulty scale maps to
// generator parameters.
type DifficultyConfig struct {
	EasyGapCells   int   `yaml:"easy_gap_cells"` // tunnel height at difficulty 1
	HardGapCells   int   `yaml:"hard_gap_cells"` // tunnel height at difficulty 30
	MiniExtraCells int   `yaml:"mini_extra_cells"`
	TierBounds     []int `yaml:"tier_bounds"` // inclusive upper bound of every tier but the last
}

// DifficultyManager calculates generator parameters from the difficulty.
type DifficultyManager struct {
	cfg DifficultyConfig
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	if len(cfg.TierBounds) == 0 {
		cfg.TierBounds = []int{7, 15, 22}
	}
	return &DifficultyManager{cfg: cfg}
}

// Level returns the difficulty as a fraction from 0.0 (difficulty 1) to
// 1.0 (difficulty 30).
func (d *DifficultyManager) Level(difficulty int) float64 {
	l := float64(difficulty-MinDifficulty) / float64(MaxDifficulty-MinDifficulty)
	return clampF(l, 0.0, 1.0)
}

// Tier returns the difficulty tier, 0 for the easiest. The default bounds
// give four tiers: 1-7, 8-15, 16-22 and 23-30.
func (d *DifficultyManager) Tier(difficulty int) int {
	for i, bound := range d.cfg.TierBounds {
		if difficulty <= bound {
			return i
		}
	}
	return len(d.cfg.TierBounds)
}

// Tiers returns the number of tiers.
func (d *DifficultyManager) Tiers() int {
	return len(d.cfg.TierBounds) + 1
}

// TierRange returns the lowest and highest difficulty of a tier.
func (d *DifficultyManager) TierRange(tier int) (lo, hi int) {
	bounds := d.cfg.TierBounds
	tier = max(0, min(tier, len(bounds)))
	lo, hi = MinDifficulty, MaxDifficulty
	if tier > 0 {
		lo = bounds[tier-1] + 1
	}
	if tier < len(bounds) {
		hi = bounds[tier]
	}
	return lo, hi
}

// GapCells returns the target tunnel height in cells.
// The gap narrows as difficulty increases and widens in mini mode.
func (d *DifficultyManager) GapCells(difficulty int, mini bool) int {
	easy, hard := d.cfg.EasyGapCells, d.cfg.HardGapCells
	gap := easy - int(math.Round(d.Level(difficulty)*float64(easy-hard)))
	if mini {
		gap += d.cfg.MiniExtraCells
	}
	if gap < 2 { // Minimum playable tunnel
		gap = 2
	}
	return gap
}

// Scale interpolates from lo at difficulty 1 to hi at difficulty 30.
func (d *DifficultyManager) Scale(lo, hi float64, difficulty int) float64 {
	return lo + d.Level(difficulty)*(hi-lo)
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
