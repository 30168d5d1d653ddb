package level

import "github.com/AppIemon/umm-sub002/internal/core"

// Default portal dimensions in world units.
const (
	PortalWidth  = 30.0
	PortalHeight = 90.0
)

// PortalKind is the state change a portal applies.
type PortalKind uint8

const (
	PortalGravityOn PortalKind = iota
	PortalGravityOff
	PortalSpeedSlow
	PortalSpeedNormal
	PortalSpeedFast
	PortalSpeedFaster
	PortalSpeedFastest
	PortalMiniOn
	PortalMiniOff
	PortalTeleportIn
	PortalTeleportOut
)

// SpeedMultipliers lists the multipliers reachable through speed portals, in
// ascending order.
var SpeedMultipliers = []float64{0.75, 1.0, 1.25, 1.5, 2.0}

// String returns the string representation of a portal kind.
func (k PortalKind) String() string {
	switch k {
	case PortalGravityOn:
		return "gravity_on"
	case PortalGravityOff:
		return "gravity_off"
	case PortalSpeedSlow:
		return "speed_slow"
	case PortalSpeedNormal:
		return "speed_normal"
	case PortalSpeedFast:
		return "speed_fast"
	case PortalSpeedFaster:
		return "speed_faster"
	case PortalSpeedFastest:
		return "speed_fastest"
	case PortalMiniOn:
		return "mini_on"
	case PortalMiniOff:
		return "mini_off"
	case PortalTeleportIn:
		return "teleport_in"
	case PortalTeleportOut:
		return "teleport_out"
	default:
		return "unknown"
	}
}

// IsSpeed reports whether the portal changes the speed multiplier.
func (k PortalKind) IsSpeed() bool {
	return k >= PortalSpeedSlow && k <= PortalSpeedFastest
}

// Multiplier returns the speed multiplier of a speed portal, or 0.
func (k PortalKind) Multiplier() float64 {
	if !k.IsSpeed() {
		return 0
	}
	return SpeedMultipliers[k-PortalSpeedSlow]
}

// SpeedIndex returns the index of m in SpeedMultipliers, or the nearest one.
func SpeedIndex(m float64) int {
	best := 0
	bestDiff := -1.0
	for i, v := range SpeedMultipliers {
		d := v - m
		if d < 0 {
			d = -d
		}
		if bestDiff < 0 || d < bestDiff {
			best = i
			bestDiff = d
		}
	}
	return best
}

// SpeedPortal returns the portal kind for a speed multiplier.
func SpeedPortal(m float64) PortalKind {
	return PortalSpeedSlow + PortalKind(SpeedIndex(m))
}

// Portal is a level object that applies one discrete state change on first
// overlap.
type Portal struct {
	Kind      PortalKind
	X, Y      float64 // top-left corner
	W, H      float64
	Pair      int // index of the matching teleport-out, -1 if none
	Activated bool
}

// NewPortal creates a portal of default size centered on (cx, cy).
func NewPortal(kind PortalKind, cx, cy float64) Portal {
	return Portal{
		Kind: kind,
		X:    cx - PortalWidth/2,
		Y:    cy - PortalHeight/2,
		W:    PortalWidth,
		H:    PortalHeight,
		Pair: -1,
	}
}

// Activate marks the portal as used. It returns true only on the first call
// of a playthrough.
func (p *Portal) Activate() bool {
	if p.Activated {
		return false
	}
	p.Activated = true
	return true
}

// Rect returns the portal's trigger area.
func (p Portal) Rect() core.Rect {
	return core.NewRect(p.X, p.Y, p.W, p.H)
}

// CenterY returns the vertical center of the portal.
func (p Portal) CenterY() float64 {
	return p.Y + p.H/2
}

// ResetPortals clears activation flags for a new playthrough.
func ResetPortals(portals []Portal) {
	for i := range portals {
		portals[i].Activated = false
	}
}
