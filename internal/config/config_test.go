package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestEmbeddedMatchesDefault(t *testing.T) {
	cfg, err := Parse(DefaultYAML())
	if err != nil {
		t.Fatalf("Parse(embedded) error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("embedded defaults differ from Default():\n%+v\n%+v", cfg, Default())
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"difficulty zero", func(c *Config) { c.Map.Difficulty = 0 }},
		{"difficulty negative", func(c *Config) { c.Map.Difficulty = -3 }},
		{"difficulty too high", func(c *Config) { c.Map.Difficulty = 31 }},
		{"zero base speed", func(c *Config) { c.Map.BaseSpeed = 0 }},
		{"inverted bounds", func(c *Config) { c.Map.MinY, c.Map.MaxY = 480, 0 }},
		{"margin eats field", func(c *Config) { c.Map.Margin = 300 }},
		{"right angle", func(c *Config) { c.Map.WaveAngle = 90 }},
		{"zero dt", func(c *Config) { c.Search.Dt = 0 }},
		{"zero cell", func(c *Config) { c.Terrain.CellSize = 0 }},
		{"no attempts", func(c *Config) { c.Generation.MaxAttempts = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, expected ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadFileLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levelgen.yaml")
	data := []byte("map:\n  difficulty: 17\nsearch:\n  max_iterations: 1000\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Map.Difficulty != 17 {
		t.Errorf("Difficulty = %d, expected 17", cfg.Map.Difficulty)
	}
	if cfg.Search.MaxIterations != 1000 {
		t.Errorf("MaxIterations = %d, expected 1000", cfg.Search.MaxIterations)
	}
	if cfg.Map.BaseSpeed != Default().Map.BaseSpeed {
		t.Errorf("BaseSpeed = %v, expected default", cfg.Map.BaseSpeed)
	}
	if !cfg.Map.HoldUp {
		t.Error("HoldUp should keep its default when absent")
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing custom config")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("map:\n  difficulty: 99\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() = %v, expected ErrInvalidConfig", err)
	}
}

func TestPresets(t *testing.T) {
	tests := []struct {
		preset   DifficultyPreset
		expected int
	}{
		{DifficultyEasy, 5},
		{DifficultyNormal, 12},
		{DifficultyHard, 22},
		{DifficultyFixed, 9},
	}
	for _, tc := range tests {
		t.Run(string(tc.preset), func(t *testing.T) {
			cfg := Default()
			cfg.Map.Difficulty = 9
			ApplyPreset(&cfg, tc.preset)
			if cfg.Map.Difficulty != tc.expected {
				t.Errorf("Difficulty = %d, expected %d", cfg.Map.Difficulty, tc.expected)
			}
		})
	}

	if _, err := ParsePreset("brutal"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestDifficultyTiers(t *testing.T) {
	dm := NewDifficultyManager(Default().Difficulty)
	tests := []struct {
		difficulty int
		tier       int
	}{
		{1, 0}, {7, 0}, {8, 1}, {15, 1}, {16, 2}, {22, 2}, {23, 3}, {30, 3},
	}
	for _, tc := range tests {
		if got := dm.Tier(tc.difficulty); got != tc.tier {
			t.Errorf("Tier(%d) = %d, expected %d", tc.difficulty, got, tc.tier)
		}
	}
	if dm.Tiers() != 4 {
		t.Errorf("Tiers() = %d, expected 4", dm.Tiers())
	}

	ranges := [][2]int{{1, 7}, {8, 15}, {16, 22}, {23, 30}}
	for tier, want := range ranges {
		if lo, hi := dm.TierRange(tier); lo != want[0] || hi != want[1] {
			t.Errorf("TierRange(%d) = %d-%d, expected %d-%d", tier, lo, hi, want[0], want[1])
		}
	}
	if lo, hi := dm.TierRange(9); lo != 23 || hi != 30 {
		t.Errorf("TierRange(9) = %d-%d, expected the last tier", lo, hi)
	}
}

func TestGapCells(t *testing.T) {
	dm := NewDifficultyManager(Default().Difficulty)
	if got := dm.GapCells(1, false); got != 8 {
		t.Errorf("GapCells(1) = %d, expected 8", got)
	}
	if got := dm.GapCells(30, false); got != 4 {
		t.Errorf("GapCells(30) = %d, expected 4", got)
	}
	if dm.GapCells(12, true) != dm.GapCells(12, false)+1 {
		t.Error("mini mode should add one cell")
	}
	prev := dm.GapCells(1, false)
	for d := 2; d <= 30; d++ {
		g := dm.GapCells(d, false)
		if g > prev {
			t.Fatalf("gap grew from %d to %d at difficulty %d", prev, g, d)
		}
		prev = g
	}
}

func TestMotionModel(t *testing.T) {
	m := Default().Map
	if got := m.VerticalSpeed(1, false); got < 299.999 || got > 300.001 {
		t.Errorf("VerticalSpeed(1, normal) = %v, expected 300", got)
	}
	if m.EffectiveAngle(2, true) <= m.EffectiveAngle(1, true) {
		t.Error("mini angle should steepen with speed")
	}
	if m.Direction(true, false) != -1 || m.Direction(false, false) != 1 {
		t.Error("hold should move up under normal gravity")
	}
	if m.Direction(true, true) != 1 {
		t.Error("inverted gravity should flip the hold direction")
	}
	m.HoldUp = false
	if m.Direction(true, false) != 1 {
		t.Error("HoldUp=false should flip the hold direction")
	}
	if got := Default().Map.ClampY(-50); got != 20 {
		t.Errorf("ClampY(-50) = %v, expected 20", got)
	}
}

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "levelgen.yaml")
	if err := os.WriteFile(path, []byte("map: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := Watch(path)
	if err != nil {
		t.Fatalf("Watch() error: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("map:\n  difficulty: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-w.Events:
		if filepath.Base(name) != "levelgen.yaml" {
			t.Errorf("event for %s, expected levelgen.yaml", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no watch event")
	}
}
