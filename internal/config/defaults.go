package config

import (
	_ "embed"
)

//go:embed defaults/levelgen.yaml
var defaultYAML []byte

// Default returns the hardcoded generator configuration.
func Default() Config {
	return Config{
		Map: MapConfig{
			Difficulty:      5,
			BaseSpeed:       300,
			PortalFrequency: 0.5,
			MinY:            0,
			MaxY:            480,
			Margin:          20,
			HitboxRadius:    12,
			MiniHitbox:      7,
			WaveAngle:       45,
			MiniWaveAngle:   60,
			MiniAngleStep:   5,
			HoldUp:          true,
		},
		Simulator: SimulatorConfig{
			Dt:                1.0 / 60,
			FastBeat:          0.2,
			ReleaseBase:       0.5,
			ReleaseJitter:     0.3,
			ReleaseMin:        0.3,
			ReleaseMax:        0.8,
			DedupEpsilon:      0.001,
			MinBeatOffset:     0.25,
			FallbackInterval:  0.5,
			BeatsPerMeasure:   4,
			DefaultIntensity:  0.5,
			WarmupMeasures:    1,
			IntensitySpeedMix: 0.5,
		},
		Terrain: TerrainConfig{
			CellSize:       40,
			WorldTop:       -80,
			WorldBottom:    560,
			SafetyMargin:   6,
			ContractAt:     1,
			ContractDouble: 3,
			ExpandAt:       1,
			ExpandDouble:   2,
			HazardGapCells: 5,
			HazardChance:   0.12,
			HazardMax:      0.4,
			FloatingChance: 0.05,
			OrbSize:        16,
		},
		Search: SearchConfig{
			Dt:                1.0 / 30,
			MaxIterations:     250000,
			SafetyMargin:      2,
			MovingMargin:      4,
			MinSwitchInterval: 0.1,
			Lookahead:         60,
			EscapeDistance:    25,
			FallingScan:       300,
			YBucket:           2,
			DiagnosticRadius:  120,
		},
		Generation: GenerationConfig{
			MaxAttempts: 5,
			Workers:     4,
			StepBurst:   2000,
		},
		Difficulty: DifficultyConfig{
			EasyGapCells:   8,
			HardGapCells:   4,
			MiniExtraCells: 1,
			TierBounds:     []int{7, 15, 22},
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
