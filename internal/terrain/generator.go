// Package terrain builds the tunnel of geometry around a reference path:
// floor and ceiling blocks with ramps, hazards drawn from the registry,
// decorative orbs on beats and the portals of the state timeline.
package terrain

import (
	"math"

	"github.com/AppIemon/umm-sub002/internal/collision"
	"github.com/AppIemon/umm-sub002/internal/config"
	"github.com/AppIemon/umm-sub002/internal/core"
	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/registry"
)

// Salts separating the hash rolls made for one cell.
const (
	saltHazard uint64 = iota + 1
	saltVariant
	saltFloating
	saltFloatingVariant
	saltFloatingSide
)

// Input is what the generator reads from the path simulator.
type Input struct {
	Path    []level.PathPoint
	Events  []level.StateEvent
	Beats   []float64
	Portals []level.Portal
}

// Output holds the generated level objects, both sorted by x.
type Output struct {
	Obstacles []level.Obstacle
	Portals   []level.Portal
	Hazards   []Placed // in placement order
	Cells     []Cell
}

// Placed records one hazard placement.
type Placed struct {
	ID        string
	Pool      string
	Placement registry.Placement
	X         float64
}

// Cell is the tunnel boundary over one column of the grid. Min and Max
// differ only where the boundary ramps within the cell.
type Cell struct {
	X0, X1   float64
	CeilMin  float64
	CeilMax  float64
	FloorMin float64
	FloorMax float64
}

// Open returns the Y range that is free of terrain over the entire cell.
func (c Cell) Open() (top, bottom float64) {
	return c.CeilMax, c.FloorMin
}

// Solid returns the Y values above and below which everything is terrain.
func (c Cell) Solid() (top, bottom float64) {
	return c.CeilMin, c.FloorMax
}

// Flat reports whether neither boundary ramps within the cell.
func (c Cell) Flat() (floor, ceiling bool) {
	return c.FloorMin == c.FloorMax, c.CeilMin == c.CeilMax
}

type generator struct {
	cfg      config.Config
	dm       *config.DifficultyManager
	tier     int
	seed     uint64
	in       Input
	clear    float64
	floorRun blockRun
	ceilRun  blockRun
	lastPool map[registry.Placement]int
	pools    map[registry.Placement][]registry.Pool
	out      []level.Obstacle
	hazards  []Placed
	cells    []Cell
}

// Generate builds terrain, hazards and decorations around the path. It is
// deterministic: the same input and seed always give the same output.
func Generate(cfg config.Config, in Input, seed uint64) Output {
	g := &generator{
		cfg:      cfg,
		dm:       config.NewDifficultyManager(cfg.Difficulty),
		seed:     seed,
		in:       in,
		clear:    cfg.Map.HitboxRadius + cfg.Terrain.SafetyMargin,
		lastPool: make(map[registry.Placement]int),
		pools:    make(map[registry.Placement][]registry.Pool),
	}
	g.tier = g.dm.Tier(cfg.Map.Difficulty)
	if len(in.Path) == 0 {
		return Output{}
	}

	g.buildTunnel()
	g.placeHazards()
	g.placeOrbs()
	g.out = g.filter(g.out)

	level.SortObstacles(g.out)
	portals := append([]level.Portal(nil), in.Portals...)
	level.SortPortals(portals)

	return Output{Obstacles: g.out, Portals: portals, Hazards: g.hazards, Cells: g.cells}
}

// span returns the minimum and maximum path Y within [x0, x1].
func (g *generator) span(x0, x1 float64) (float64, float64) {
	path := g.in.Path
	i := level.PointAtX(path, x0)
	if i > 0 {
		i--
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for ; i < len(path); i++ {
		p := path[i]
		lo = math.Min(lo, p.Y)
		hi = math.Max(hi, p.Y)
		if p.X > x1 {
			break
		}
	}
	return lo, hi
}

// miniAt returns whether size mode is active at time t.
func (g *generator) miniAt(t float64) bool {
	mini := false
	for _, e := range g.in.Events {
		if e.Time > t {
			break
		}
		mini = e.Mini
	}
	return mini
}

// clearOfPath reports whether a rectangle keeps the hitbox-plus-safety
// clearance from every path point near it.
func (g *generator) clearOfPath(b core.Rect) bool {
	path := g.in.Path
	r := g.clear
	i := level.PointAtX(path, b.X-r)
	if i > 0 {
		i--
	}
	for ; i < len(path); i++ {
		p := path[i]
		if p.X > b.Right()+r {
			break
		}
		if p.X+r > b.X && p.X-r < b.Right() && p.Y+r > b.Y && p.Y-r < b.Bottom() {
			return false
		}
	}
	return true
}

func (g *generator) cellAt(x float64) (Cell, bool) {
	if len(g.cells) == 0 {
		return Cell{}, false
	}
	c := int(math.Floor((x - g.cells[0].X0) / g.cfg.Terrain.CellSize))
	if c < 0 || c >= len(g.cells) {
		return Cell{}, false
	}
	return g.cells[c], true
}

// filter drops hazards and decorations that lie entirely inside terrain.
// Terrain is always kept.
func (g *generator) filter(obs []level.Obstacle) []level.Obstacle {
	kept := obs[:0]
	for _, o := range obs {
		if o.Role == level.RoleTerrain {
			kept = append(kept, o)
			continue
		}
		b := collision.Bounds(o)
		cell, ok := g.cellAt(b.X + b.W/2)
		if ok {
			top, bottom := cell.Solid()
			if b.Y >= bottom || b.Bottom() <= top {
				continue
			}
		}
		kept = append(kept, o)
	}
	return kept
}

func ceilTo(v, step float64) float64 {
	return math.Ceil(v/step) * step
}

func floorTo(v, step float64) float64 {
	return core.Quantize(v, step)
}
