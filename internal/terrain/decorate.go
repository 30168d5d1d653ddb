package terrain

import (
	"github.com/AppIemon/umm-sub002/internal/collision"
	"github.com/AppIemon/umm-sub002/internal/core"
	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/registry"
)

// leadCells is the number of cells at the start kept free of hazards.
const leadCells = 3

// Hash rows, one per roll site.
const (
	rowFloor = iota
	rowCeiling
	rowFloating
)

// placeHazards rolls for edge hazards on flat cells with a wide enough
// tunnel, and independently for rarer floating hazards.
func (g *generator) placeHazards() {
	t := g.cfg.Terrain
	m := g.cfg.Map
	chance := g.dm.Scale(t.HazardChance, t.HazardMax, m.Difficulty)
	floating := t.FloatingChance * (1 + g.dm.Level(m.Difficulty))
	minGap := float64(t.HazardGapCells) * t.CellSize
	length := level.PathLength(g.in.Path)

	for ci, cell := range g.cells {
		if cell.X0 < leadCells*t.CellSize || cell.X1 > length {
			continue
		}
		top, bottom := cell.Open()
		lo, hi := g.span(cell.X0-m.HitboxRadius, cell.X1+m.HitboxRadius)
		flatFloor, flatCeil := cell.Flat()

		if flatFloor && bottom-top >= minGap && core.HashCell(g.seed, ci, rowFloor, saltHazard) < chance {
			g.tryHazard(registry.PlaceFloor, registry.Slot{
				X:      cell.X0,
				Width:  cell.X1 - cell.X0,
				Anchor: bottom,
				Room:   bottom - (hi + g.clear),
				Roll:   core.HashCell(g.seed, ci, rowFloor, saltVariant),
			})
		}
		if flatCeil && bottom-top >= minGap && core.HashCell(g.seed, ci, rowCeiling, saltHazard) < chance {
			g.tryHazard(registry.PlaceCeiling, registry.Slot{
				X:      cell.X0,
				Width:  cell.X1 - cell.X0,
				Anchor: top,
				Room:   (lo - g.clear) - top,
				Roll:   core.HashCell(g.seed, ci, rowCeiling, saltVariant),
			})
		}

		if core.HashCell(g.seed, ci, rowFloating, saltFloating) >= floating {
			continue
		}
		above := (lo - g.clear) - top
		below := bottom - (hi + g.clear)
		anchor, room := top+above/2, above
		if below > above || (below == above && core.HashCell(g.seed, ci, rowFloating, saltFloatingSide) < 0.5) {
			anchor, room = bottom-below/2, below
		}
		g.tryHazard(registry.PlaceFloating, registry.Slot{
			X:      cell.X0,
			Width:  cell.X1 - cell.X0,
			Anchor: anchor,
			Room:   room,
			Roll:   core.HashCell(g.seed, ci, rowFloating, saltFloatingVariant),
		})
	}
}

// tryHazard places a hazard from the pool after the last one used at this
// placement, moving on to later pools when a pick does not fit. The pool
// used last is only reused when it is the only one.
func (g *generator) tryHazard(p registry.Placement, s registry.Slot) {
	pools, ok := g.pools[p]
	if !ok {
		pools = registry.Pools(p, g.tier)
		g.pools[p] = pools
	}
	if len(pools) == 0 || s.Room <= 0 {
		return
	}
	s.Tier = g.tier

	last, used := g.lastPool[p]
	next := 0
	if used {
		next = last + 1
	}
	for k := range len(pools) {
		i := (next + k) % len(pools)
		if used && i == last && len(pools) > 1 {
			continue
		}
		if g.buildHazard(p, pools[i], s) {
			g.lastPool[p] = i
			return
		}
	}
}

// buildHazard picks a hazard from the pool by the slot's roll and keeps it
// only if every piece stays clear of the path.
func (g *generator) buildHazard(p registry.Placement, pool registry.Pool, s registry.Slot) bool {
	pick := core.Clamp(int(s.Roll*float64(len(pool.Hazards))), 0, len(pool.Hazards)-1)
	info := pool.Hazards[pick]
	obs, err := registry.Build(info.ID, s)
	if err != nil || len(obs) == 0 {
		return false
	}
	for _, o := range obs {
		if !g.clearOfPath(collision.Bounds(o)) {
			return false
		}
	}
	g.out = append(g.out, obs...)
	g.hazards = append(g.hazards, Placed{ID: info.ID, Pool: pool.Name, Placement: p, X: s.X})
	return true
}

// placeOrbs puts a decorative orb at the tunnel midpoint on every beat
// where it fits.
func (g *generator) placeOrbs() {
	size := g.cfg.Terrain.OrbSize
	path := g.in.Path
	for _, b := range g.in.Beats {
		i := level.PointAtTime(path, b)
		if i < 0 {
			continue
		}
		p := path[i]
		cell, ok := g.cellAt(p.X)
		if !ok {
			continue
		}
		top, bottom := cell.Open()
		if bottom-top < 2*size {
			continue
		}
		mid := (top + bottom) / 2
		g.out = append(g.out, level.NewObstacle(level.KindOrb, level.RoleDecoration, p.X-size/2, mid-size/2, size, size))
	}
}
