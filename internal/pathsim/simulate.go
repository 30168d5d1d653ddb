// Package pathsim turns song timing into a reference traversal: a list of
// state-change events, a hold/release schedule, and the dense path those
// produce under the player's motion model.
package pathsim

import (
	"math"

	"github.com/AppIemon/umm-sub002/internal/config"
	"github.com/AppIemon/umm-sub002/internal/core"
	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/song"
)

// Initial is the player state at the start of every level.
var Initial = level.StateEvent{Speed: 1}

// Result is the output of one simulation.
type Result struct {
	Events    []level.StateEvent
	Actions   []Action
	Path      []level.PathPoint
	Portals   []level.Portal
	Beats     []float64
	Synthetic bool // beats came from the fallback grid
	Duration  float64
	Length    float64
}

// Simulate runs the beat/path simulator. The same configuration, features,
// seed and offset always produce the same result. Only an invalid
// configuration is an error; malformed song data is repaired.
func Simulate(cfg config.Config, f song.Features, seed int64, offset int) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	sim := cfg.Simulator
	rng := core.NewRNG(core.MixSeed(seed, offset))

	measure := f.MeasureSeconds(sim.BeatsPerMeasure, sim.FallbackInterval)
	f.Duration = sanitizeDuration(f, measure)

	beats, synthetic := f.Beats(sim.MinBeatOffset, sim.FallbackInterval)
	if len(beats) == 0 {
		// Shorter than one fallback interval: a single beat keeps the
		// schedule non-empty.
		beats = []float64{math.Min(sim.MinBeatOffset, f.Duration/2)}
		synthetic = true
	}

	events := buildTimeline(cfg, f.CleanSections(), beats[0], measure, f.Duration, rng)
	actions := buildSchedule(sim, beats, f.Duration, rng)
	path := integrate(cfg, events, actions, f.Duration)

	return Result{
		Events:    events,
		Actions:   actions,
		Path:      path,
		Portals:   placePortals(path, events),
		Beats:     beats,
		Synthetic: synthetic,
		Duration:  f.Duration,
		Length:    level.PathLength(path),
	}, nil
}

// sanitizeDuration replaces a missing duration with the last beat plus one
// measure, or four measures when there are no beats either.
func sanitizeDuration(f song.Features, measure float64) float64 {
	if f.Duration > 0 && !math.IsInf(f.Duration, 0) {
		return f.Duration
	}
	last := -1.0
	for _, b := range f.BeatTimes {
		if !math.IsNaN(b) && !math.IsInf(b, 0) && b > last {
			last = b
		}
	}
	if last > 0 {
		return last + measure
	}
	return 4 * measure
}

// integrate steps a fixed clock over the events and actions and records
// the player position at every step.
func integrate(cfg config.Config, events []level.StateEvent, actions []Action, duration float64) []level.PathPoint {
	m := cfg.Map
	dt := cfg.Simulator.Dt
	steps := int(math.Ceil(duration/dt - 1e-9))

	path := make([]level.PathPoint, 0, steps+1)
	x, y := 0.0, m.ClampY(m.Midline())
	st := Initial
	hold := false
	ei, ai := 0, 0

	for n := 0; n <= steps; n++ {
		t := float64(n) * dt
		for ei < len(events) && events[ei].Time <= t {
			st = events[ei]
			ei++
		}
		for ai < len(actions) && actions[ai].Time <= t {
			hold = actions[ai].Hold
			ai++
		}
		path = append(path, level.PathPoint{Time: t, X: x, Y: y, Hold: hold})
		if n == steps {
			break
		}

		vy := m.VerticalSpeed(st.Speed, st.Mini)
		y = m.ClampY(y + m.Direction(hold, st.Gravity)*vy*dt)
		x += m.BaseSpeed * st.Speed * dt
	}
	return path
}

// placePortals puts one portal per changed field of every event at the path
// point where the event takes effect, so each portal sits on the path.
func placePortals(path []level.PathPoint, events []level.StateEvent) []level.Portal {
	var portals []level.Portal
	prev := Initial
	for _, e := range events {
		i := level.PointAtTime(path, e.Time)
		if i < 0 {
			break
		}
		if path[i].Time < e.Time && i+1 < len(path) {
			i++
		}
		p := path[i]

		if e.Speed != prev.Speed {
			portals = append(portals, level.NewPortal(level.SpeedPortal(e.Speed), p.X, p.Y))
		}
		if e.Gravity != prev.Gravity {
			kind := level.PortalGravityOff
			if e.Gravity {
				kind = level.PortalGravityOn
			}
			portals = append(portals, level.NewPortal(kind, p.X, p.Y))
		}
		if e.Mini != prev.Mini {
			kind := level.PortalMiniOff
			if e.Mini {
				kind = level.PortalMiniOn
			}
			portals = append(portals, level.NewPortal(kind, p.X, p.Y))
		}
		prev = e
	}
	return portals
}
