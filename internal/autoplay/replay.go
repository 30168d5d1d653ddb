package autoplay

import (
	"math"

	"github.com/AppIemon/umm-sub002/internal/config"
	"github.com/AppIemon/umm-sub002/internal/level"
)

// Replay walks a recorded trace through a level, applying portals the same
// way the search does, and returns the index of the first point whose exact
// hitbox collides or that leaves the play field. It returns -1 for a clean
// trace.
func Replay(cfg config.Config, obstacles []level.Obstacle, portals []level.Portal, path []level.PathPoint) int {
	i, _ := replay(cfg, obstacles, portals, path)
	return i
}

// replay runs the trace as a single playthrough, so every portal fires at
// most once, and returns the validator holding the activated portals.
func replay(cfg config.Config, obstacles []level.Obstacle, portals []level.Portal, path []level.PathPoint) (int, *Validator) {
	v := New(cfg, obstacles, portals, 0)
	v.single = true
	m := cfg.Map
	n := node{parent: -1, lastSwitch: -1, speed: uint8(level.SpeedIndex(1))}
	for i, p := range path {
		n.x, n.y = p.X, p.Y
		n.step = int32(math.Round(p.Time / v.dt))
		v.applyPortals(&n)
		if p.Y < m.MinY+m.Margin-1e-9 || p.Y > m.MaxY-m.Margin+1e-9 {
			return i, v
		}
		if v.hitExact(n) {
			return i, v
		}
	}
	return -1, v
}
