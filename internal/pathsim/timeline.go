package pathsim

import (
	"math"

	"github.com/AppIemon/umm-sub002/internal/config"
	"github.com/AppIemon/umm-sub002/internal/core"
	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/song"
)

// Per-tier tuning of the macro timeline. Index 0 is the easiest tier.
var (
	// speedWeights are relative odds for each entry of level.SpeedMultipliers.
	speedWeights = [][]float64{
		{2, 6, 2, 0, 0},
		{1, 4, 3, 1, 0},
		{1, 3, 3, 2, 1},
		{0, 2, 3, 3, 2},
	}
	changeOdds  = []float64{0.5, 0.7, 0.85, 1.0}
	gravityOdds = []float64{0, 0.15, 0.25, 0.35}
	miniOdds    = []float64{0.05, 0.1, 0.15, 0.2}
)

func tierRow[T any](rows []T, tier int) T {
	return rows[core.Clamp(tier, 0, len(rows)-1)]
}

// weightsFor biases the tier's speed odds by section intensity: louder
// sections push toward the faster multipliers.
func weightsFor(tier int, intensity, mix float64) []float64 {
	base := tierRow(speedWeights, tier)
	w := make([]float64, len(base))
	for i, b := range base {
		bias := 1 + mix*(intensity-0.5)*float64(i-1)
		w[i] = b * math.Max(0, bias)
	}
	return w
}

// buildTimeline walks measure boundaries and emits a StateEvent whenever the
// rolled state differs from the current one.
func buildTimeline(cfg config.Config, sections []song.Section, firstBeat, measure, duration float64, rng *core.RNG) []level.StateEvent {
	if !(measure > 0) {
		return nil
	}
	dm := config.NewDifficultyManager(cfg.Difficulty)
	tier := dm.Tier(cfg.Map.Difficulty)
	freq := core.ClampF(cfg.Map.PortalFrequency, 0, 1)

	var events []level.StateEvent
	cur := Initial
	for k := cfg.Simulator.WarmupMeasures; ; k++ {
		t := firstBeat + float64(k)*measure
		if t >= duration {
			break
		}
		intensity := song.IntensityAt(sections, t, cfg.Simulator.DefaultIntensity)
		scale := 0.5 + intensity

		if !rng.Chance(core.ClampF(freq*scale*tierRow(changeOdds, tier), 0, 1)) {
			continue
		}

		next := cur
		next.Time = t
		next.Speed = level.SpeedMultipliers[rng.Weighted(weightsFor(tier, intensity, cfg.Simulator.IntensitySpeedMix))]
		if rng.Chance(tierRow(gravityOdds, tier) * scale) {
			next.Gravity = !cur.Gravity
		}
		if rng.Chance(tierRow(miniOdds, tier) * scale) {
			next.Mini = !cur.Mini
		}
		if next.SameState(cur) {
			continue
		}
		events = append(events, next)
		cur = next
	}
	return events
}
