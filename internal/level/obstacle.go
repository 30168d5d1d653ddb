// Package level defines the records produced by level generation: obstacles,
// portals, state events, path points and the finished level. The types carry
// no behavior beyond small accessors so they can be shared by the generator,
// the collision engine and the validator.
package level

import (
	"math"

	"github.com/AppIemon/umm-sub002/internal/core"
)

// MinObstacleSize is the smallest width or height an obstacle may have.
const MinObstacleSize = 1.0

// Kind identifies what an obstacle is. It is fixed at construction.
type Kind uint8

const (
	KindBlock Kind = iota
	KindSpike
	KindFallingSpike
	KindSlopeUp   // rises left to right
	KindSlopeDown // falls left to right
	KindSaw
	KindBall
	KindMine
	KindOrb
	KindLaserH
	KindLaserV
	KindPlanet
	KindStar
)

// Shape is the geometry test family a kind belongs to.
type Shape uint8

const (
	ShapeRect Shape = iota
	ShapeTriangle
	ShapeEllipse
	ShapeBeam
	ShapeOrbit
)

// String returns the string representation of a kind.
func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindSpike:
		return "spike"
	case KindFallingSpike:
		return "falling_spike"
	case KindSlopeUp:
		return "slope_up"
	case KindSlopeDown:
		return "slope_down"
	case KindSaw:
		return "saw"
	case KindBall:
		return "ball"
	case KindMine:
		return "mine"
	case KindOrb:
		return "orb"
	case KindLaserH:
		return "laser_h"
	case KindLaserV:
		return "laser_v"
	case KindPlanet:
		return "planet"
	case KindStar:
		return "star"
	default:
		return "unknown"
	}
}

// Shape returns the geometry family used for collision tests.
func (k Kind) Shape() Shape {
	switch k {
	case KindSpike, KindFallingSpike, KindSlopeUp, KindSlopeDown:
		return ShapeTriangle
	case KindSaw, KindBall, KindMine, KindOrb:
		return ShapeEllipse
	case KindLaserH, KindLaserV:
		return ShapeBeam
	case KindPlanet, KindStar:
		return ShapeOrbit
	default:
		return ShapeRect
	}
}

// Falling reports whether the kind drops once the player passes under it.
func (k Kind) Falling() bool {
	return k == KindFallingSpike
}

// Role separates level structure from hazards and decorations.
type Role uint8

const (
	RoleTerrain Role = iota
	RoleHazard
	RoleDecoration
)

// Orientation selects the vertex layout of triangular shapes.
type Orientation uint8

const (
	OrientAuto    Orientation = iota // derived from the play-field midline
	OrientFloor                      // points or rises upward
	OrientCeiling                    // points or hangs downward
)

// MoveKind selects the time function of a movement descriptor.
type MoveKind uint8

const (
	MoveOscillate MoveKind = iota
	MoveRotate
)

// Movement describes a time-parameterized motion.
// Speed is in radians per second and Phase in radians.
type Movement struct {
	Kind      MoveKind
	Range     float64 // vertical amplitude for oscillation
	Speed     float64
	Phase     float64
	BaselineY float64 // top-left Y the oscillation is centered on
}

// Params holds free-form per-kind parameters.
type Params struct {
	PulseRate       float64 // laser on/off cycles per second, 0 = always on
	PulseDuty       float64 // fraction of a pulse cycle the laser is solid
	OrbitCount      int     // procedurally placed satellites
	OrbitRadius     float64 // distance of procedural satellites from center
	OrbitSpeed      float64 // radians per second
	SatelliteRadius float64
}

// Moon orbits a satellite. Moons have no children.
type Moon struct {
	Distance float64
	Radius   float64
	Speed    float64
	Phase    float64
}

// Satellite orbits the center of a compound obstacle.
type Satellite struct {
	Distance float64
	Radius   float64
	Speed    float64
	Phase    float64
	Moons    []Moon
}

// Obstacle is a piece of level geometry.
// X and Y are the top-left corner; rotation is about the center.
type Obstacle struct {
	Kind        Kind
	Role        Role
	X, Y        float64
	W, H        float64
	Rotation    float64 // static rotation in degrees
	Orientation Orientation
	Movement    *Movement
	Params      Params
	Satellites  []Satellite
}

// NewObstacle creates an obstacle, clamping degenerate sizes and replacing
// non-finite coordinates so bad values never reach the collision engine.
func NewObstacle(kind Kind, role Role, x, y, w, h float64) Obstacle {
	return Obstacle{
		Kind: kind,
		Role: role,
		X:    core.Finite(x, 0),
		Y:    core.Finite(y, 0),
		W:    math.Max(core.Finite(w, MinObstacleSize), MinObstacleSize),
		H:    math.Max(core.Finite(h, MinObstacleSize), MinObstacleSize),
	}
}

// WithMovement attaches a movement descriptor. Negative speeds are folded
// into the phase direction and an unset baseline defaults to the obstacle Y.
func (o Obstacle) WithMovement(m Movement) Obstacle {
	m.Speed = math.Abs(core.Finite(m.Speed, 0))
	m.Range = math.Abs(core.Finite(m.Range, 0))
	m.Phase = core.Finite(m.Phase, 0)
	if m.BaselineY == 0 || math.IsNaN(m.BaselineY) {
		m.BaselineY = o.Y
	}
	o.Movement = &m
	return o
}

// Lethal reports whether touching the obstacle ends a run.
func (o Obstacle) Lethal() bool {
	return o.Role != RoleDecoration
}

// Moving reports whether the obstacle changes over time.
func (o Obstacle) Moving() bool {
	if o.Movement != nil && o.Movement.Speed > 0 {
		return true
	}
	if o.Kind.Shape() == ShapeOrbit && (o.Params.OrbitCount > 0 || len(o.Satellites) > 0) {
		return true
	}
	return o.Kind.Shape() == ShapeBeam && o.Params.PulseRate > 0
}

// Rect returns the static bounding rectangle.
func (o Obstacle) Rect() core.Rect {
	return core.NewRect(o.X, o.Y, o.W, o.H)
}

// Center returns the static center point.
func (o Obstacle) Center() (float64, float64) {
	return o.X + o.W/2, o.Y + o.H/2
}
