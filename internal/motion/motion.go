// Package motion evaluates time-parameterized obstacle motion.
// Every function is pure and safe for concurrent use.
package motion

import (
	"math"

	"github.com/AppIemon/umm-sub002/internal/level"
)

// State is an obstacle's pose at a point in time.
// X and Y are the top-left corner, Angle is in degrees in [0, 360).
type State struct {
	X, Y  float64
	Angle float64
}

// CenterX returns the horizontal center for an obstacle of width w.
func (s State) CenterX(w float64) float64 { return s.X + w/2 }

// CenterY returns the vertical center for an obstacle of height h.
func (s State) CenterY(h float64) float64 { return s.Y + h/2 }

// StateAt returns the obstacle's position and rotation at time t.
func StateAt(o level.Obstacle, t float64) State {
	s := State{X: o.X, Y: o.Y, Angle: NormalizeAngle(o.Rotation)}
	m := o.Movement
	if m == nil {
		return s
	}

	switch m.Kind {
	case level.MoveOscillate:
		s.Y = m.BaselineY + math.Sin(t*m.Speed+m.Phase)*m.Range
	case level.MoveRotate:
		s.Angle = NormalizeAngle(o.Rotation + (t*m.Speed+m.Phase)*180/math.Pi)
	}
	return s
}

// NormalizeAngle maps degrees into [0, 360).
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	// Round away float noise so that quarter turns land exactly.
	r := math.Round(a*1e9) / 1e9
	if r >= 360 {
		r = 0
	}
	return r
}

// OrbitPoint returns center + (cos θ, sin θ)·distance with θ = t·speed + phase.
func OrbitPoint(cx, cy, distance, speed, phase, t float64) (float64, float64) {
	theta := t*speed + phase
	return cx + math.Cos(theta)*distance, cy + math.Sin(theta)*distance
}

// ProceduralSatellite returns the center of the i-th procedurally placed
// satellite of an orbit obstacle whose center is (cx, cy).
func ProceduralSatellite(o level.Obstacle, cx, cy float64, i int, t float64) (float64, float64) {
	n := o.Params.OrbitCount
	if n <= 0 {
		return cx, cy
	}
	phase := float64(i) * 2 * math.Pi / float64(n)
	return OrbitPoint(cx, cy, o.Params.OrbitRadius, o.Params.OrbitSpeed, phase, t)
}

// SatelliteCenter returns the center of an explicit satellite.
func SatelliteCenter(s level.Satellite, cx, cy, t float64) (float64, float64) {
	return OrbitPoint(cx, cy, s.Distance, s.Speed, s.Phase, t)
}

// MoonCenter returns the center of a moon orbiting a satellite at (sx, sy).
func MoonCenter(m level.Moon, sx, sy, t float64) (float64, float64) {
	return OrbitPoint(sx, sy, m.Distance, m.Speed, m.Phase, t)
}

// PulseActive reports whether a pulsing obstacle is solid at time t.
// Obstacles without a pulse rate are always active.
func PulseActive(o level.Obstacle, t float64) bool {
	rate := o.Params.PulseRate
	if rate <= 0 {
		return true
	}
	duty := o.Params.PulseDuty
	if duty <= 0 || duty >= 1 {
		duty = 0.5
	}
	cycle := t * rate
	frac := cycle - math.Floor(cycle)
	return frac < duty
}
