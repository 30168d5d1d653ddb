package motion

import (
	"math"
	"testing"

	"github.com/AppIemon/umm-sub002/internal/level"
)

func TestStaticObstacle(t *testing.T) {
	o := level.NewObstacle(level.KindBlock, level.RoleTerrain, 10, 20, 30, 30)
	o.Rotation = 450
	s := StateAt(o, 12.5)
	if s.X != 10 || s.Y != 20 {
		t.Errorf("static obstacle moved to (%v, %v)", s.X, s.Y)
	}
	if s.Angle != 90 {
		t.Errorf("static rotation should normalize to 90, got %v", s.Angle)
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	o := level.NewObstacle(level.KindSaw, level.RoleHazard, 0, 0, 40, 40).
		WithMovement(level.Movement{Kind: level.MoveRotate, Speed: 2, Phase: 0})

	tests := []struct {
		name     string
		t        float64
		expected float64
	}{
		{"at zero", 0, 0},
		{"at pi/4", math.Pi / 2 / 2, 90},
		{"full turn wraps", math.Pi, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := StateAt(o, tc.t).Angle
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("Angle = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestOscillate(t *testing.T) {
	o := level.NewObstacle(level.KindSaw, level.RoleHazard, 0, 100, 40, 40).
		WithMovement(level.Movement{Kind: level.MoveOscillate, Range: 30, Speed: 1, BaselineY: 100})

	if y := StateAt(o, 0).Y; y != 100 {
		t.Errorf("Y at t=0 = %v, expected 100", y)
	}
	if y := StateAt(o, math.Pi/2).Y; math.Abs(y-130) > 1e-9 {
		t.Errorf("Y at t=pi/2 = %v, expected 130", y)
	}
	if x := StateAt(o, 1).X; x != 0 {
		t.Errorf("oscillation should not move X, got %v", x)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct{ in, out float64 }{
		{-90, 270},
		{360, 0},
		{725, 5},
		{359.9999999999, 0},
	}
	for _, tc := range tests {
		if got := NormalizeAngle(tc.in); math.Abs(got-tc.out) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, expected %v", tc.in, got, tc.out)
		}
	}
}

func TestOrbitPoint(t *testing.T) {
	x, y := OrbitPoint(100, 100, 50, 1, 0, math.Pi/2)
	if math.Abs(x-100) > 1e-9 || math.Abs(y-150) > 1e-9 {
		t.Errorf("OrbitPoint() = (%v, %v), expected (100, 150)", x, y)
	}
}

func TestProceduralSatellitesSpread(t *testing.T) {
	o := level.NewObstacle(level.KindPlanet, level.RoleHazard, 0, 0, 40, 40)
	o.Params.OrbitCount = 2
	o.Params.OrbitRadius = 30
	x0, _ := ProceduralSatellite(o, 0, 0, 0, 0)
	x1, _ := ProceduralSatellite(o, 0, 0, 1, 0)
	if math.Abs(x0-30) > 1e-9 || math.Abs(x1+30) > 1e-9 {
		t.Errorf("two satellites should sit opposite each other, got %v and %v", x0, x1)
	}
}

func TestPulseActive(t *testing.T) {
	o := level.NewObstacle(level.KindLaserH, level.RoleHazard, 0, 0, 100, 10)
	if !PulseActive(o, 0.7) {
		t.Error("laser without pulse rate should always be active")
	}
	o.Params.PulseRate = 1
	o.Params.PulseDuty = 0.5
	if !PulseActive(o, 0.25) {
		t.Error("laser should be active in the first half of the cycle")
	}
	if PulseActive(o, 0.75) {
		t.Error("laser should be inactive in the second half of the cycle")
	}
}
