// Package config provides YAML-based generator configuration loading and
// difficulty management for level generation.
package config

import (
	"errors"
	"fmt"
	"math"
)

// Difficulty bounds accepted by the generator.
const (
	MinDifficulty = 1
	MaxDifficulty = 30
)

// ErrInvalidConfig is returned for configuration that can never produce a
// level. It is a caller bug and must not be retried.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config contains everything one generation run reads. It is passed by value
// and never mutated by the pipeline.
type Config struct {
	Map        MapConfig        `yaml:"map"`
	Simulator  SimulatorConfig  `yaml:"simulator"`
	Terrain    TerrainConfig    `yaml:"terrain"`
	Search     SearchConfig     `yaml:"search"`
	Generation GenerationConfig `yaml:"generation"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// MapConfig defines the play field and the player's motion model.
type MapConfig struct {
	Difficulty      int     `yaml:"difficulty"`       // 1..30
	BaseSpeed       float64 `yaml:"base_speed"`       // units per second at 1x
	PortalFrequency float64 `yaml:"portal_frequency"` // 0 = never change state, 1 = very often
	MinY            float64 `yaml:"min_y"`
	MaxY            float64 `yaml:"max_y"`
	Margin          float64 `yaml:"margin"` // distance the player center keeps from MinY/MaxY
	HitboxRadius    float64 `yaml:"hitbox_radius"`
	MiniHitbox      float64 `yaml:"mini_hitbox_radius"`
	WaveAngle       float64 `yaml:"wave_angle"`      // degrees
	MiniWaveAngle   float64 `yaml:"mini_wave_angle"` // degrees
	MiniAngleStep   float64 `yaml:"mini_angle_step"` // extra degrees per 1x of speed above normal in mini mode
	HoldUp          bool    `yaml:"hold_up"`         // holding moves up under normal gravity
}

// SimulatorConfig tunes the beat/path simulator.
type SimulatorConfig struct {
	Dt                float64 `yaml:"dt"`
	FastBeat          float64 `yaml:"fast_beat"` // beats closer than this toggle hold/release
	ReleaseBase       float64 `yaml:"release_base"`
	ReleaseJitter     float64 `yaml:"release_jitter"`
	ReleaseMin        float64 `yaml:"release_min"`
	ReleaseMax        float64 `yaml:"release_max"`
	DedupEpsilon      float64 `yaml:"dedup_epsilon"`
	MinBeatOffset     float64 `yaml:"min_beat_offset"`
	FallbackInterval  float64 `yaml:"fallback_interval"`
	BeatsPerMeasure   int     `yaml:"beats_per_measure"`
	DefaultIntensity  float64 `yaml:"default_intensity"`
	WarmupMeasures    int     `yaml:"warmup_measures"`
	IntensitySpeedMix float64 `yaml:"intensity_speed_mix"` // how strongly intensity skews speed weights
}

// TerrainConfig tunes the tunnel and hazard generator.
type TerrainConfig struct {
	CellSize       float64 `yaml:"cell_size"`
	WorldTop       float64 `yaml:"world_top"`
	WorldBottom    float64 `yaml:"world_bottom"`
	SafetyMargin   float64 `yaml:"safety_margin"`
	ContractAt     int     `yaml:"contract_at"` // cells of difference before the boundary closes in
	ContractDouble int     `yaml:"contract_double"`
	ExpandAt       int     `yaml:"expand_at"`
	ExpandDouble   int     `yaml:"expand_double"`
	HazardGapCells int     `yaml:"hazard_gap_cells"` // minimum tunnel height for edge hazards
	HazardChance   float64 `yaml:"hazard_chance"`    // at difficulty 1
	HazardMax      float64 `yaml:"hazard_max"`       // at difficulty 30
	FloatingChance float64 `yaml:"floating_chance"`
	OrbSize        float64 `yaml:"orb_size"`
}

// SearchConfig tunes the autoplay validator.
type SearchConfig struct {
	Dt                float64 `yaml:"dt"`
	MaxIterations     int     `yaml:"max_iterations"`
	SafetyMargin      float64 `yaml:"safety_margin"`
	MovingMargin      float64 `yaml:"moving_margin"`
	MinSwitchInterval float64 `yaml:"min_switch_interval"` // seconds at 1x, divided by the speed multiplier
	Lookahead         int     `yaml:"lookahead"`           // frames
	EscapeDistance    float64 `yaml:"escape_distance"`
	FallingScan       float64 `yaml:"falling_scan"`
	YBucket           float64 `yaml:"y_bucket"`
	DiagnosticRadius  float64 `yaml:"diagnostic_radius"`
}

// GenerationConfig controls the retry loop.
type GenerationConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	Workers     int `yaml:"workers"`
	StepBurst   int `yaml:"step_burst"` // validator iterations between cancellation checks
}

// Midline returns the vertical center of the play field.
func (m MapConfig) Midline() float64 {
	return (m.MinY + m.MaxY) / 2
}

// HitboxSize returns the side length of the square player hitbox.
func (m MapConfig) HitboxSize(mini bool) float64 {
	if mini {
		return 2 * m.MiniHitbox
	}
	return 2 * m.HitboxRadius
}

// ClampY keeps a player center inside the play field margins.
func (m MapConfig) ClampY(y float64) float64 {
	return math.Max(m.MinY+m.Margin, math.Min(m.MaxY-m.Margin, y))
}

// EffectiveAngle returns the travel angle in degrees. Mini mode is steeper
// and gets steeper still at higher speeds.
func (m MapConfig) EffectiveAngle(speed float64, mini bool) float64 {
	if !mini {
		return m.WaveAngle
	}
	a := m.MiniWaveAngle
	if speed > 1 {
		a += (speed - 1) * m.MiniAngleStep
	}
	return math.Min(a, 80)
}

// VerticalSpeed returns the vertical amplitude baseSpeed·speed·tan(angle).
func (m MapConfig) VerticalSpeed(speed float64, mini bool) float64 {
	return m.BaseSpeed * speed * math.Tan(m.EffectiveAngle(speed, mini)*math.Pi/180)
}

// Direction returns -1 when the player moves up and +1 when it moves down.
func (m MapConfig) Direction(hold, inverted bool) float64 {
	up := hold != inverted
	if !m.HoldUp {
		up = !up
	}
	if up {
		return -1
	}
	return 1
}

// Validate reports configuration that can never produce a level.
func (c Config) Validate() error {
	m := c.Map
	switch {
	case m.Difficulty < MinDifficulty || m.Difficulty > MaxDifficulty:
		return fmt.Errorf("%w: difficulty %d out of range [%d, %d]", ErrInvalidConfig, m.Difficulty, MinDifficulty, MaxDifficulty)
	case !(m.BaseSpeed > 0):
		return fmt.Errorf("%w: base speed must be positive", ErrInvalidConfig)
	case !(m.MaxY-m.MinY > 2*m.Margin) || m.Margin < 0:
		return fmt.Errorf("%w: bounds [%g, %g] leave no room for margin %g", ErrInvalidConfig, m.MinY, m.MaxY, m.Margin)
	case !(m.HitboxRadius > 0) || !(m.MiniHitbox > 0):
		return fmt.Errorf("%w: hitbox radius must be positive", ErrInvalidConfig)
	case !(m.WaveAngle > 0 && m.WaveAngle < 90) || !(m.MiniWaveAngle > 0 && m.MiniWaveAngle < 90):
		return fmt.Errorf("%w: wave angles must be in (0, 90)", ErrInvalidConfig)
	case !(c.Simulator.Dt > 0) || !(c.Search.Dt > 0):
		return fmt.Errorf("%w: time steps must be positive", ErrInvalidConfig)
	case c.Simulator.BeatsPerMeasure <= 0 || !(c.Simulator.FallbackInterval > 0):
		return fmt.Errorf("%w: beat grid must be positive", ErrInvalidConfig)
	case !(c.Terrain.CellSize > 0):
		return fmt.Errorf("%w: cell size must be positive", ErrInvalidConfig)
	case c.Terrain.WorldTop > m.MinY || c.Terrain.WorldBottom < m.MaxY:
		return fmt.Errorf("%w: world extents must contain the play field", ErrInvalidConfig)
	case c.Search.MaxIterations <= 0 || !(c.Search.YBucket > 0):
		return fmt.Errorf("%w: search budget must be positive", ErrInvalidConfig)
	case c.Generation.MaxAttempts <= 0:
		return fmt.Errorf("%w: max attempts must be positive", ErrInvalidConfig)
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// DifficultyForPreset returns the map difficulty a preset selects.
func DifficultyForPreset(preset DifficultyPreset) int {
	switch preset {
	case DifficultyEasy:
		return 5
	case DifficultyNormal:
		return 12
	case DifficultyHard:
		return 22
	default:
		return 0
	}
}

// IsFixedPreset returns true if the preset keeps the configured difficulty.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ParsePreset validates a preset name.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	}
	return "", fmt.Errorf("unknown difficulty preset %q", s)
}
