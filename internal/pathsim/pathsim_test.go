package pathsim

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/AppIemon/umm-sub002/internal/config"
	"github.com/AppIemon/umm-sub002/internal/core"
	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/song"
)

func demoSong() song.Features {
	var beats []float64
	for b := 0.5; b < 30; b += 0.5 {
		beats = append(beats, b)
	}
	// A burst of fast beats.
	beats = append(beats, 10.1, 10.2, 10.3)
	return song.Features{
		BeatTimes: beats,
		Sections: []song.Section{
			{Start: 0, End: 10, Intensity: 0.2},
			{Start: 10, End: 30, Intensity: 0.9},
		},
		Duration: 30,
		BPM:      120,
	}
}

func hardConfig() config.Config {
	cfg := config.Default()
	cfg.Map.Difficulty = 25
	cfg.Map.PortalFrequency = 1
	return cfg
}

func TestSimulateDeterministic(t *testing.T) {
	cfg := hardConfig()
	a, err := Simulate(cfg, demoSong(), 42, 0)
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	b, err := Simulate(cfg, demoSong(), 42, 0)
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("two runs with the same seed differ")
	}

	c, err := Simulate(cfg, demoSong(), 42, 1)
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	if reflect.DeepEqual(a.Path, c.Path) && reflect.DeepEqual(a.Events, c.Events) {
		t.Error("a different offset should vary the output")
	}
}

func TestPathStaysInBounds(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		cfg := hardConfig()
		res, err := Simulate(cfg, demoSong(), seed, 0)
		if err != nil {
			t.Fatalf("Simulate() error: %v", err)
		}
		lo := cfg.Map.MinY + cfg.Map.Margin
		hi := cfg.Map.MaxY - cfg.Map.Margin
		for i, p := range res.Path {
			if p.Y < lo || p.Y > hi {
				t.Fatalf("seed %d point %d: y=%v outside [%v, %v]", seed, i, p.Y, lo, hi)
			}
		}
	}
}

func TestPathMonotonicX(t *testing.T) {
	res, err := Simulate(hardConfig(), demoSong(), 7, 0)
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	for i := 1; i < len(res.Path); i++ {
		if res.Path[i].X < res.Path[i-1].X {
			t.Fatalf("x decreased at %d", i)
		}
		if res.Path[i].Time <= res.Path[i-1].Time {
			t.Fatalf("time not increasing at %d", i)
		}
	}
	if res.Length != res.Path[len(res.Path)-1].X {
		t.Errorf("Length = %v, expected last x %v", res.Length, res.Path[len(res.Path)-1].X)
	}
}

func TestEventMinimality(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		res, err := Simulate(hardConfig(), demoSong(), seed, 0)
		if err != nil {
			t.Fatalf("Simulate() error: %v", err)
		}
		if err := level.ValidateEvents(Initial, res.Events); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
	}
}

func TestPortalsSitOnPath(t *testing.T) {
	found := false
	for seed := int64(1); seed <= 20; seed++ {
		res, err := Simulate(hardConfig(), demoSong(), seed, 0)
		if err != nil {
			t.Fatalf("Simulate() error: %v", err)
		}
		for _, p := range res.Portals {
			found = true
			cx := p.X + p.W/2
			i := level.PointAtX(res.Path, cx-1e-6)
			if math.Abs(res.Path[i].X-cx) > 1e-9 || math.Abs(res.Path[i].Y-p.CenterY()) > 1e-9 {
				t.Fatalf("seed %d: portal %v at (%v, %v) is off the path", seed, p.Kind, cx, p.CenterY())
			}
		}
	}
	if !found {
		t.Error("expected at least one portal across 20 seeds at difficulty 25")
	}
}

func TestEmptyBeatsFallbackGrid(t *testing.T) {
	res, err := Simulate(config.Default(), song.Features{Duration: 10}, 1, 0)
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	if !res.Synthetic {
		t.Error("expected a synthetic beat grid")
	}
	if len(res.Beats) < 10 {
		t.Fatalf("len(Beats) = %d, expected a full grid", len(res.Beats))
	}
	for i := 1; i < len(res.Beats); i++ {
		if d := res.Beats[i] - res.Beats[i-1]; math.Abs(d-0.5) > 1e-9 {
			t.Fatalf("beat interval %v, expected 0.5", d)
		}
	}
	if len(res.Path) < 600 {
		t.Errorf("len(Path) = %d, expected a path covering 10s", len(res.Path))
	}
	if len(res.Actions) == 0 {
		t.Error("fallback grid should still produce hold/release actions")
	}
}

func TestMissingDurationRepaired(t *testing.T) {
	res, err := Simulate(config.Default(), song.Features{BeatTimes: []float64{0.5, 1, 1.5}, BPM: 120}, 1, 0)
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	if math.Abs(res.Duration-3.5) > 1e-9 {
		t.Errorf("Duration = %v, expected last beat plus one measure", res.Duration)
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Map.Difficulty = -1
	if _, err := Simulate(cfg, demoSong(), 1, 0); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Simulate() = %v, expected ErrInvalidConfig", err)
	}
}

func TestScheduleFastBeatsToggle(t *testing.T) {
	sim := config.Default().Simulator
	rng := core.NewRNG(1)
	actions := buildSchedule(sim, []float64{1.0, 1.1, 1.2, 1.3}, 3, rng)

	// Three fast beats toggle, the last one presses and releases.
	expected := []Action{
		{Time: 1.0, Hold: true},
		{Time: 1.1, Hold: false},
		{Time: 1.2, Hold: true},
	}
	if len(actions) != 4 {
		t.Fatalf("actions = %+v, expected 4", actions)
	}
	for i, e := range expected {
		if actions[i] != e {
			t.Errorf("actions[%d] = %+v, expected %+v", i, actions[i], e)
		}
	}
	last := actions[3]
	if last.Hold {
		t.Error("final action should be a release")
	}
	lo, hi := 1.3+1.7*sim.ReleaseMin, 1.3+1.7*sim.ReleaseMax
	if last.Time < lo-1e-9 || last.Time > hi+1e-9 {
		t.Errorf("release at %v, expected within [%v, %v]", last.Time, lo, hi)
	}
}

func TestDedupActions(t *testing.T) {
	raw := []Action{
		{Time: 1.0, Hold: true},
		{Time: 1.0005, Hold: false},
		{Time: 2.0, Hold: false},
		{Time: 3.0, Hold: true},
		{Time: 3.0, Hold: true},
	}
	got := dedupActions(raw, 0.001)
	expected := []Action{{Time: 3.0, Hold: true}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("dedupActions() = %+v, expected %+v", got, expected)
	}
}

func TestWeightsFollowIntensity(t *testing.T) {
	calm := weightsFor(2, 0, 0.5)
	loud := weightsFor(2, 1, 0.5)
	if loud[4] <= calm[4] {
		t.Error("loud sections should favor the fastest multiplier")
	}
	if loud[0] >= calm[0] {
		t.Error("loud sections should disfavor the slowest multiplier")
	}
}
