// Package collision decides overlap between a player hitbox and level
// obstacles. Queries are deterministic: identical inputs always give
// identical answers.
package collision

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/motion"
)

// DefaultMidline is the play-field midline used to orient triangles whose
// orientation is left automatic.
const DefaultMidline = 240.0

// Engine runs collision queries against a play field.
type Engine struct {
	// Midline splits the play field; OrientAuto triangles below it are
	// floor shapes, above it ceiling shapes.
	Midline float64
}

// New creates an engine for a play field with the given midline.
func New(midline float64) Engine {
	return Engine{Midline: midline}
}

var defaultEngine = Engine{Midline: DefaultMidline}

// Collides reports whether a hitbox of the given size centered on center
// overlaps the obstacle at simulation time t, using the default midline.
func Collides(o level.Obstacle, center, size cp.Vector, t float64) bool {
	return defaultEngine.Collides(o, center, size, t)
}

// SamplePoints returns the four hitbox corners followed by its center.
func SamplePoints(center, size cp.Vector) [5]cp.Vector {
	hx, hy := size.X/2, size.Y/2
	return [5]cp.Vector{
		{X: center.X - hx, Y: center.Y - hy},
		{X: center.X + hx, Y: center.Y - hy},
		{X: center.X - hx, Y: center.Y + hy},
		{X: center.X + hx, Y: center.Y + hy},
		center,
	}
}

// Collides reports whether a hitbox of the given size centered on center
// overlaps the obstacle at simulation time t.
func (e Engine) Collides(o level.Obstacle, center, size cp.Vector, t float64) bool {
	shape := o.Kind.Shape()
	if shape == level.ShapeBeam && !motion.PulseActive(o, t) {
		return false
	}

	st := motion.StateAt(o, t)
	c := cp.Vector{X: st.CenterX(o.W), Y: st.CenterY(o.H)}
	samples := SamplePoints(center, size)

	if shape == level.ShapeOrbit {
		return orbitHit(o, c, samples[:], t)
	}

	// Undo the obstacle's rotation so every shape test runs axis-aligned.
	if st.Angle != 0 {
		rot := cp.ForAngle(st.Angle * math.Pi / 180)
		for i := range samples {
			samples[i] = c.Add(samples[i].Sub(c).Unrotate(rot))
		}
	}

	box := localBox{
		x0: c.X - o.W/2, y0: c.Y - o.H/2,
		x1: c.X + o.W/2, y1: c.Y + o.H/2,
	}
	if shape == level.ShapeBeam {
		return beamHit(o, box, samples[:])
	}

	inBox := false
	for _, p := range samples {
		if box.contains(p) {
			inBox = true
			break
		}
	}
	if !inBox {
		return false
	}

	switch shape {
	case level.ShapeRect:
		return true
	case level.ShapeTriangle:
		tri := triangleFor(o, box, e.floorFacing(o, c.Y))
		return anyPoint(samples[:], tri.contains)
	case level.ShapeEllipse:
		return anyPoint(samples[:], func(p cp.Vector) bool {
			return insideEllipse(p, c, o.W/2, o.H/2)
		})
	}
	return false
}

// floorFacing resolves a triangle's orientation.
func (e Engine) floorFacing(o level.Obstacle, centerY float64) bool {
	switch o.Orientation {
	case level.OrientFloor:
		return true
	case level.OrientCeiling:
		return false
	default:
		return centerY >= e.Midline
	}
}

func anyPoint(points []cp.Vector, test func(cp.Vector) bool) bool {
	for _, p := range points {
		if test(p) {
			return true
		}
	}
	return false
}

// PortalOverlap reports whether a hitbox touches a portal's trigger area.
func PortalOverlap(p level.Portal, center, size cp.Vector) bool {
	return p.X < center.X+size.X/2 && center.X-size.X/2 < p.X+p.W &&
		p.Y < center.Y+size.Y/2 && center.Y-size.Y/2 < p.Y+p.H
}
