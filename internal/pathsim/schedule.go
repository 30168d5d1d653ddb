package pathsim

import (
	"github.com/AppIemon/umm-sub002/internal/config"
	"github.com/AppIemon/umm-sub002/internal/core"
)

// Action is a scheduled change of the input.
type Action struct {
	Time float64
	Hold bool
}

// buildSchedule turns sorted beats into hold/release actions. Fast beats
// toggle the input on every beat; slower beats press on the beat and release
// partway to the next one, giving one arc per beat.
func buildSchedule(sim config.SimulatorConfig, beats []float64, duration float64, rng *core.RNG) []Action {
	raw := make([]Action, 0, 2*len(beats))
	hold := false
	for i, b := range beats {
		next := duration
		if i+1 < len(beats) {
			next = beats[i+1]
		}
		gap := next - b

		if gap < sim.FastBeat {
			hold = !hold
			raw = append(raw, Action{Time: b, Hold: hold})
			continue
		}

		frac := sim.ReleaseBase + (2*rng.Float()-1)*sim.ReleaseJitter
		frac = core.ClampF(frac, sim.ReleaseMin, sim.ReleaseMax)
		raw = append(raw,
			Action{Time: b, Hold: true},
			Action{Time: b + gap*frac, Hold: false},
		)
		hold = false
	}
	return dedupActions(raw, sim.DedupEpsilon)
}

// dedupActions collapses actions closer than eps (the later one wins) and
// drops actions that do not change the input.
func dedupActions(raw []Action, eps float64) []Action {
	collapsed := make([]Action, 0, len(raw))
	for _, a := range raw {
		if n := len(collapsed); n > 0 && a.Time-collapsed[n-1].Time < eps {
			collapsed[n-1].Hold = a.Hold
			continue
		}
		collapsed = append(collapsed, a)
	}

	out := collapsed[:0]
	state := false
	for _, a := range collapsed {
		if a.Hold == state {
			continue
		}
		out = append(out, a)
		state = a.Hold
	}
	return out
}
