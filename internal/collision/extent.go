package collision

import (
	"math"

	"github.com/AppIemon/umm-sub002/internal/core"
	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/motion"
)

// orbitReach returns how far orbiting children extend from the center.
func orbitReach(o level.Obstacle) float64 {
	reach := 0.0
	if o.Params.OrbitCount > 0 {
		reach = o.Params.OrbitRadius + o.Params.SatelliteRadius
	}
	for _, s := range o.Satellites {
		r := s.Distance + s.Radius
		for _, m := range s.Moons {
			r = math.Max(r, s.Distance+m.Distance+m.Radius)
		}
		reach = math.Max(reach, r)
	}
	return reach
}

// Bounds returns a rectangle containing the obstacle at every point in time.
// It covers rotation, oscillation range and orbiting children.
func Bounds(o level.Obstacle) core.Rect {
	cx, cy := o.Center()
	halfW, halfH := o.W/2, o.H/2

	rotates := o.Rotation != 0 || (o.Movement != nil && o.Movement.Kind == level.MoveRotate)
	if rotates {
		r := math.Hypot(halfW, halfH)
		halfW, halfH = r, r
	}
	if o.Kind.Shape() == level.ShapeOrbit {
		reach := orbitReach(o)
		halfW = math.Max(halfW, reach)
		halfH = math.Max(halfH, reach)
	}

	r := core.RectAround(cx, cy, 2*halfW, 2*halfH)
	if m := o.Movement; m != nil && m.Kind == level.MoveOscillate {
		low := r
		low.Y = m.BaselineY + (r.Y - o.Y) - m.Range
		high := low
		high.Y = m.BaselineY + (r.Y - o.Y) + m.Range
		r = low.Union(high)
	}
	return r
}

// BoundsAt returns the obstacle's bounding rectangle at time t.
func BoundsAt(o level.Obstacle, t float64) core.Rect {
	st := motion.StateAt(o, t)
	cx, cy := st.CenterX(o.W), st.CenterY(o.H)
	halfW, halfH := o.W/2, o.H/2

	if st.Angle != 0 {
		rad := st.Angle * math.Pi / 180
		cos, sin := math.Abs(math.Cos(rad)), math.Abs(math.Sin(rad))
		halfW, halfH = o.W/2*cos+o.H/2*sin, o.W/2*sin+o.H/2*cos
	}
	r := core.RectAround(cx, cy, 2*halfW, 2*halfH)

	if o.Kind.Shape() != level.ShapeOrbit {
		return r
	}
	for i := 0; i < o.Params.OrbitCount; i++ {
		sx, sy := motion.ProceduralSatellite(o, cx, cy, i, t)
		d := 2 * o.Params.SatelliteRadius
		r = r.Union(core.RectAround(sx, sy, d, d))
	}
	for _, s := range o.Satellites {
		sx, sy := motion.SatelliteCenter(s, cx, cy, t)
		r = r.Union(core.RectAround(sx, sy, 2*s.Radius, 2*s.Radius))
		for _, m := range s.Moons {
			mx, my := motion.MoonCenter(m, sx, sy, t)
			r = r.Union(core.RectAround(mx, my, 2*m.Radius, 2*m.Radius))
		}
	}
	return r
}

// VerticalExtent returns the top and bottom of the obstacle at time t.
func VerticalExtent(o level.Obstacle, t float64) (float64, float64) {
	r := BoundsAt(o, t)
	return r.Y, r.Bottom()
}
