package terrain

import (
	"math"

	"github.com/AppIemon/umm-sub002/internal/core"
	"github.com/AppIemon/umm-sub002/internal/level"
)

// blockRun merges consecutive flat cells at the same height into one block
// that extends to the world edge.
type blockRun struct {
	ceiling bool
	active  bool
	first   int // first cell index
	last    int
	x0, x1  float64
	y       float64
}

func (r *blockRun) add(g *generator, c int, x0, x1, y float64) {
	if r.active && r.y == y && r.last == c-1 {
		r.last = c
		r.x1 = x1
		return
	}
	r.flush(g)
	*r = blockRun{ceiling: r.ceiling, active: true, first: c, last: c, x0: x0, x1: x1, y: y}
}

func (r *blockRun) flush(g *generator) {
	if !r.active {
		return
	}
	r.active = false
	t := g.cfg.Terrain
	var y, h float64
	if r.ceiling {
		y, h = t.WorldTop, r.y-t.WorldTop
	} else {
		y, h = r.y, t.WorldBottom-r.y
	}
	if h <= 0 {
		return
	}
	g.out = append(g.out, level.NewObstacle(level.KindBlock, level.RoleTerrain, r.x0, y, r.x1-r.x0, h))
}

// chooseStep returns a step of 0, 1 or 2 cells for a boundary that is diff
// cells from its target.
func chooseStep(diff, at, double int) int {
	a := core.Abs(diff)
	if a < at || a == 0 {
		return 0
	}
	s := 1
	if a >= double {
		s = 2
	}
	return s * core.Sign(diff)
}

// advance moves a boundary toward its target in floor space, where larger
// values are farther below the path. Ceilings are passed negated.
// need is the closest the boundary may come to the path and limit the
// farthest it may go. A boundary that already violates need is pushed back
// at once as a vertical wall.
func (g *generator) advance(cur, target, need, limit float64) (float64, bool) {
	t := g.cfg.Terrain
	cell := t.CellSize
	if cur < need {
		return math.Min(ceilTo(need, cell), limit), false
	}

	diff := int(math.Round((target - cur) / cell))
	var step int
	if diff < 0 {
		step = chooseStep(diff, t.ContractAt, t.ContractDouble)
	} else {
		step = chooseStep(diff, t.ExpandAt, t.ExpandDouble)
	}
	next := math.Min(cur+float64(step)*cell, limit)
	if next < need {
		return cur, false
	}
	return next, next != cur
}

// buildTunnel walks the grid from one cell before the path to one cell past
// its end and emits floor and ceiling geometry.
func (g *generator) buildTunnel() {
	m := g.cfg.Map
	t := g.cfg.Terrain
	cell := t.CellSize
	path := g.in.Path
	length := level.PathLength(path)

	g.floorRun = blockRun{}
	g.ceilRun = blockRun{ceiling: true}

	first, last := -1, int(math.Ceil(length/cell))+1
	var curFloor, curCeil float64
	for c := first; c <= last; c++ {
		x0 := float64(c) * cell
		x1 := x0 + cell
		lo, hi := g.span(x0-m.HitboxRadius, x1+m.HitboxRadius)
		mini := g.miniAt(path[level.PointAtX(path, x0)].Time)
		half := float64(g.dm.GapCells(m.Difficulty, mini)) * cell / 2
		mid := (lo + hi) / 2

		floorNeed := hi + g.clear
		ceilNeed := lo - g.clear

		targetFloor := math.Min(ceilTo(mid+half, cell), m.MaxY)
		targetFloor = math.Max(targetFloor, math.Min(ceilTo(floorNeed, cell), m.MaxY))
		targetCeil := math.Max(floorTo(mid-half, cell), m.MinY)
		targetCeil = math.Min(targetCeil, math.Max(floorTo(ceilNeed, cell), m.MinY))
		if c == first {
			curFloor, curCeil = targetFloor, targetCeil
		}

		nextFloor, floorRamp := g.advance(curFloor, targetFloor, floorNeed, m.MaxY)
		negCeil, ceilRamp := g.advance(-curCeil, -targetCeil, -ceilNeed, -m.MinY)
		nextCeil := -negCeil

		g.emitFloor(c, x0, x1, curFloor, nextFloor, floorRamp)
		g.emitCeiling(c, x0, x1, curCeil, nextCeil, ceilRamp)

		from, to := nextFloor, nextFloor
		if floorRamp {
			from = curFloor
		}
		cfrom, cto := nextCeil, nextCeil
		if ceilRamp {
			cfrom = curCeil
		}
		g.cells = append(g.cells, Cell{
			X0:       x0,
			X1:       x1,
			CeilMin:  math.Min(cfrom, cto),
			CeilMax:  math.Max(cfrom, cto),
			FloorMin: math.Min(from, to),
			FloorMax: math.Max(from, to),
		})

		curFloor, curCeil = nextFloor, nextCeil
	}
	g.floorRun.flush(g)
	g.ceilRun.flush(g)
}

func (g *generator) emitFloor(c int, x0, x1, cur, next float64, ramp bool) {
	if !ramp {
		g.floorRun.add(g, c, x0, x1, next)
		return
	}
	top, bottom := math.Min(cur, next), math.Max(cur, next)
	kind := level.KindSlopeDown
	if next < cur {
		kind = level.KindSlopeUp
	}
	o := level.NewObstacle(kind, level.RoleTerrain, x0, top, x1-x0, bottom-top)
	o.Orientation = level.OrientFloor
	g.out = append(g.out, o)
	g.floorRun.add(g, c, x0, x1, bottom)
}

func (g *generator) emitCeiling(c int, x0, x1, cur, next float64, ramp bool) {
	if !ramp {
		g.ceilRun.add(g, c, x0, x1, next)
		return
	}
	top, bottom := math.Min(cur, next), math.Max(cur, next)
	kind := level.KindSlopeUp
	if next > cur {
		kind = level.KindSlopeDown
	}
	o := level.NewObstacle(kind, level.RoleTerrain, x0, top, x1-x0, bottom-top)
	o.Orientation = level.OrientCeiling
	g.out = append(g.out, o)
	g.ceilRun.add(g, c, x0, x1, top)
}
