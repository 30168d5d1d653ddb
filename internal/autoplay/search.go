package autoplay

import (
	"math"
	"sort"

	"github.com/jakecoffman/cp"

	"github.com/AppIemon/umm-sub002/internal/collision"
	"github.com/AppIemon/umm-sub002/internal/level"
)

func (v *Validator) multiplier(n node) float64 {
	return level.SpeedMultipliers[n.speed]
}

func (v *Validator) hitbox(n node) cp.Vector {
	s := v.cfg.Map.HitboxSize(n.mini)
	return cp.Vector{X: s, Y: s}
}

func (v *Validator) time(step int32) float64 {
	return float64(step) * v.dt
}

// move integrates one frame of the motion model without portals.
func (v *Validator) move(n node, hold bool) (x, y float64) {
	m := v.cfg.Map
	speed := v.multiplier(n)
	vy := m.VerticalSpeed(speed, n.mini)
	y = m.ClampY(n.y + m.Direction(hold, n.gravity)*vy*v.dt)
	x = n.x + m.BaseSpeed*speed*v.dt
	return x, y
}

// advance builds the successor of n for the given input and checks it.
// The destination must be clear with the exact hitbox and with the
// inflated one; the midpoint of the move is checked inflated.
func (v *Validator) advance(parent int32, n node, hold bool) (node, bool) {
	x, y := v.move(n, hold)
	c := n
	c.x, c.y = x, y
	c.parent = parent
	c.step = n.step + 1
	c.hold = hold
	if hold != n.hold {
		c.lastSwitch = n.step
	}
	v.applyPortals(&c)

	t := v.time(c.step)
	if v.hitExact(c) || v.hitInflated(cp.Vector{X: c.x, Y: c.y}, v.hitbox(c), t) {
		return node{}, false
	}
	mid := cp.Vector{X: (n.x + x) / 2, Y: (n.y + y) / 2}
	if v.hitInflated(mid, v.hitbox(n), t-v.dt/2) {
		return node{}, false
	}
	return c, true
}

func (v *Validator) hitExact(n node) bool {
	_, hit := v.idx.Hit(cp.Vector{X: n.x, Y: n.y}, v.hitbox(n), 0, v.time(n.step), v.scratch)
	return hit
}

func (v *Validator) hitInflated(center, size cp.Vector, t float64) bool {
	s := v.cfg.Search
	grown := cp.Vector{X: size.X + 2*s.SafetyMargin, Y: size.Y + 2*s.SafetyMargin}
	_, hit := v.idx.Hit(center, grown, s.MovingMargin, t, v.scratch)
	return hit
}

// applyPortals triggers every portal whose center the state has reached
// while its hitbox overlaps the portal vertically. Portals passed above or
// below are skipped for good.
func (v *Validator) applyPortals(n *node) {
	for int(n.portal) < len(v.portals) {
		i := n.portal
		p := v.portals[i]
		if p.X+p.W/2 > n.x {
			return
		}
		n.portal++
		half := v.cfg.Map.HitboxSize(n.mini) / 2
		if n.y+half <= p.Y || n.y-half >= p.Y+p.H {
			continue
		}
		if v.single && !v.portals[i].Activate() {
			continue
		}
		switch {
		case p.Kind.IsSpeed():
			n.speed = uint8(level.SpeedIndex(p.Kind.Multiplier()))
		case p.Kind == level.PortalGravityOn:
			n.gravity = true
		case p.Kind == level.PortalGravityOff:
			n.gravity = false
		case p.Kind == level.PortalMiniOn:
			n.mini = true
		case p.Kind == level.PortalMiniOff:
			n.mini = false
		case p.Kind == level.PortalTeleportIn:
			if p.Pair >= 0 && p.Pair < len(v.portals) {
				n.y = v.cfg.Map.ClampY(v.portals[p.Pair].CenterY())
			}
		}
	}
}

// canSwitch reports whether the input may toggle at n. Toggles are rate
// limited, except when holding on would crash before the limit expires or
// when the player is drifting away from the open gap.
func (v *Validator) canSwitch(n node) bool {
	s := v.cfg.Search
	if n.lastSwitch < 0 {
		return true
	}
	interval := s.MinSwitchInterval / v.multiplier(n)
	elapsed := v.time(n.step - n.lastSwitch)
	if elapsed >= interval-1e-9 {
		return true
	}
	remaining := int(math.Ceil((interval - elapsed) / v.dt))
	if v.holdUnsafe(n, min(s.Lookahead, remaining)) {
		return true
	}

	center := v.gapCenter(n.x, n.y, v.time(n.step), v.hitbox(n).X)
	off := n.y - center
	dir := v.cfg.Map.Direction(n.hold, n.gravity)
	return math.Abs(off) > s.EscapeDistance && off*dir > 0
}

// holdUnsafe replays the current input for the given number of frames and
// reports whether it runs into anything.
func (v *Validator) holdUnsafe(n node, frames int) bool {
	cur := n
	for k := 0; k < frames; k++ {
		cur.x, cur.y = v.move(cur, cur.hold)
		cur.step++
		if v.hitExact(cur) {
			return true
		}
	}
	return false
}

type span struct{ lo, hi float64 }

// gapCenter returns the midpoint of the free vertical interval at x that
// contains y, or the nearest one. Lethal obstacle extents near x are merged
// and the complement is taken within the play field.
func (v *Validator) gapCenter(x, y, t, width float64) float64 {
	m := v.cfg.Map
	var blocked []span
	v.scratch = v.idx.Query(x-width/2, x+width/2, v.scratch[:0])
	for _, i := range v.scratch {
		o := v.idx.Obstacle(i)
		if !o.Lethal() {
			continue
		}
		lo, hi := collision.VerticalExtent(o, t)
		blocked = append(blocked, span{lo, hi})
	}
	sort.Slice(blocked, func(i, j int) bool { return blocked[i].lo < blocked[j].lo })

	var free []span
	cursor := m.MinY
	for _, b := range blocked {
		if b.lo > cursor {
			free = append(free, span{cursor, math.Min(b.lo, m.MaxY)})
		}
		cursor = math.Max(cursor, b.hi)
		if cursor >= m.MaxY {
			break
		}
	}
	if cursor < m.MaxY {
		free = append(free, span{cursor, m.MaxY})
	}
	if len(free) == 0 {
		return m.Midline()
	}

	best, bestDist := free[0], math.Inf(1)
	for _, f := range free {
		d := 0.0
		switch {
		case y < f.lo:
			d = f.lo - y
		case y > f.hi:
			d = y - f.hi
		}
		if d < bestDist {
			best, bestDist = f, d
		}
	}
	return (best.lo + best.hi) / 2
}

// fallingAhead reports whether a falling hazard lies within the scan window
// in front of x.
func (v *Validator) fallingAhead(x float64) bool {
	v.scratch = v.idx.Query(x, x+v.cfg.Search.FallingScan, v.scratch[:0])
	for _, i := range v.scratch {
		if v.idx.Obstacle(i).Kind.Falling() {
			return true
		}
	}
	return false
}

// prefer reports whether a should be explored before b. Both are children
// of n and differ only in input.
func (v *Validator) prefer(n, a, b node) bool {
	if a.y == b.y {
		return a.hold == n.hold
	}
	if v.fallingAhead(n.x) {
		if n.gravity {
			return a.y < b.y
		}
		return a.y > b.y
	}
	center := v.gapCenter(a.x, n.y, v.time(a.step), v.hitbox(n).X)
	da, db := math.Abs(a.y-center), math.Abs(b.y-center)
	if da == db {
		return a.hold == n.hold
	}
	return da < db
}
