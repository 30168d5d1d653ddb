package collision

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/motion"
)

// triangleEpsilon is the relative tolerance of the signed-area test.
const triangleEpsilon = 0.01

// minBeamHalfThickness is the thinnest a laser band gets.
const minBeamHalfThickness = 2.0

type localBox struct {
	x0, y0, x1, y1 float64
}

func (b localBox) contains(p cp.Vector) bool {
	return p.X >= b.x0 && p.X <= b.x1 && p.Y >= b.y0 && p.Y <= b.y1
}

type triangle struct {
	a, b, c cp.Vector
}

// triangleFor returns the solid triangle of a spike or ramp in its local
// frame. Floor shapes rise from the bottom edge, ceiling shapes hang from
// the top edge.
func triangleFor(o level.Obstacle, b localBox, floor bool) triangle {
	cx := (b.x0 + b.x1) / 2
	tl := cp.Vector{X: b.x0, Y: b.y0}
	tr := cp.Vector{X: b.x1, Y: b.y0}
	bl := cp.Vector{X: b.x0, Y: b.y1}
	br := cp.Vector{X: b.x1, Y: b.y1}

	switch o.Kind {
	case level.KindSlopeUp:
		if floor {
			return triangle{bl, tr, br}
		}
		return triangle{tl, tr, bl}
	case level.KindSlopeDown:
		if floor {
			return triangle{tl, bl, br}
		}
		return triangle{tl, tr, br}
	default:
		if floor {
			return triangle{bl, cp.Vector{X: cx, Y: b.y0}, br}
		}
		return triangle{tl, cp.Vector{X: cx, Y: b.y1}, tr}
	}
}

func triArea(a, b, c cp.Vector) float64 {
	return math.Abs(b.Sub(a).Cross(c.Sub(a))) / 2
}

// contains uses the signed-area sum: p is inside when the three
// sub-triangles add up to the full area.
func (t triangle) contains(p cp.Vector) bool {
	area := triArea(t.a, t.b, t.c)
	if area <= 0 {
		return false
	}
	sum := triArea(p, t.a, t.b) + triArea(p, t.b, t.c) + triArea(p, t.c, t.a)
	return math.Abs(sum-area) <= area*triangleEpsilon
}

func insideEllipse(p, c cp.Vector, rx, ry float64) bool {
	if rx <= 0 || ry <= 0 {
		return false
	}
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy < 1
}

func insideCircle(p cp.Vector, cx, cy, r float64) bool {
	if r <= 0 {
		return false
	}
	return p.DistanceSq(cp.Vector{X: cx, Y: cy}) < r*r
}

// BeamHalfThickness returns the half width of a laser's solid band.
func BeamHalfThickness(o level.Obstacle) float64 {
	short := math.Min(o.W, o.H)
	return math.Max(minBeamHalfThickness, short*0.2)
}

// beamHit tests the span of the sample points against the laser's solid
// band, so a band thinner than the hitbox cannot pass between samples.
func beamHit(o level.Obstacle, b localBox, samples []cp.Vector) bool {
	span := localBox{x0: samples[0].X, y0: samples[0].Y, x1: samples[0].X, y1: samples[0].Y}
	for _, p := range samples[1:] {
		span.x0, span.x1 = math.Min(span.x0, p.X), math.Max(span.x1, p.X)
		span.y0, span.y1 = math.Min(span.y0, p.Y), math.Max(span.y1, p.Y)
	}

	half := BeamHalfThickness(o)
	band := b
	if o.Kind == level.KindLaserV {
		cx := (b.x0 + b.x1) / 2
		band.x0, band.x1 = cx-half, cx+half
	} else {
		cy := (b.y0 + b.y1) / 2
		band.y0, band.y1 = cy-half, cy+half
	}
	return span.x0 <= band.x1 && span.x1 >= band.x0 && span.y0 <= band.y1 && span.y1 >= band.y0
}

// orbitHit tests the main body and every orbiting child of a compound
// obstacle. Child positions are recomputed from t on every call.
func orbitHit(o level.Obstacle, c cp.Vector, samples []cp.Vector, t float64) bool {
	for _, p := range samples {
		if insideEllipse(p, c, o.W/2, o.H/2) {
			return true
		}
	}

	for i := 0; i < o.Params.OrbitCount; i++ {
		sx, sy := motion.ProceduralSatellite(o, c.X, c.Y, i, t)
		for _, p := range samples {
			if insideCircle(p, sx, sy, o.Params.SatelliteRadius) {
				return true
			}
		}
	}

	for _, s := range o.Satellites {
		sx, sy := motion.SatelliteCenter(s, c.X, c.Y, t)
		for _, p := range samples {
			if insideCircle(p, sx, sy, s.Radius) {
				return true
			}
		}
		for _, m := range s.Moons {
			mx, my := motion.MoonCenter(m, sx, sy, t)
			for _, p := range samples {
				if insideCircle(p, mx, my, m.Radius) {
					return true
				}
			}
		}
	}
	return false
}
