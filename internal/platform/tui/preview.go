package tui

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/AppIemon/umm-sub002/internal/collision"
	"github.com/AppIemon/umm-sub002/internal/config"
	"github.com/AppIemon/umm-sub002/internal/core"
	"github.com/AppIemon/umm-sub002/internal/level"
)

// Preview rasterizes a level onto a character grid. Each cell covers an
// equal slice of the level length and of the play-field height, and shows
// the most important object overlapping it at the moment the reference
// path passes that column.
type Preview struct {
	Config config.Config
	Level  *level.Level

	// From and To select the horizontal window in world units. A zero To
	// means the whole level.
	From, To float64
}

// Draw renders the preview into a new screen of the given size.
func (p Preview) Draw(width, height int) *core.Screen {
	s := core.NewScreen(width, height)
	if width == 0 || height == 0 || p.Level == nil {
		return s
	}
	l := p.Level
	m := p.Config.Map

	from, to := p.From, p.To
	if to <= from {
		from, to = 0, math.Max(l.Length, 1)
	}
	cellW := (to - from) / float64(width)
	cellH := (m.MaxY - m.MinY) / float64(height)
	size := cp.Vector{X: cellW, Y: cellH}

	engine := collision.New(m.Midline())
	idx := collision.NewIndex(engine, l.Obstacles)
	var candidates []int

	for col := range width {
		x := from + (float64(col)+0.5)*cellW
		t := p.timeAt(x)
		candidates = idx.Query(x-cellW/2, x+cellW/2, candidates[:0])

		for row := range height {
			center := cp.Vector{X: x, Y: m.MinY + (float64(row)+0.5)*cellH}
			glyph := rune(GlyphEmpty)
			rank := 0
			for _, i := range candidates {
				o := idx.Obstacle(i)
				g, r := obstacleGlyph(o)
				if r <= rank {
					continue
				}
				if engine.Collides(o, center, size, t) {
					glyph, rank = g, r
				}
			}
			for _, portal := range l.Portals {
				if collision.PortalOverlap(portal, center, size) {
					glyph = GlyphPortal
					break
				}
			}
			s.Set(col, row, glyph)
		}
	}

	for _, pt := range l.ReferencePath {
		col, row := p.cell(pt.X, pt.Y, from, cellW, cellH)
		s.Mark(col, row, GlyphPath)
	}
	if v := l.Validation; !v.Success && v.Iterations > 0 {
		col, row := p.cell(v.FailureX, v.FailureY, from, cellW, cellH)
		s.Set(col, row, GlyphFailure)
	}
	return s
}

// Render draws the preview and styles it with the theme.
func (p Preview) Render(width, height int, theme Theme) string {
	return RenderScreen(p.Draw(width, height), theme)
}

func (p Preview) cell(x, y, from, cellW, cellH float64) (int, int) {
	col := int(math.Floor((x - from) / cellW))
	row := int(math.Floor((y - p.Config.Map.MinY) / cellH))
	return col, row
}

// timeAt returns the time the reference path reaches x, falling back to
// constant base speed when there is no path.
func (p Preview) timeAt(x float64) float64 {
	path := p.Level.ReferencePath
	if len(path) == 0 {
		if p.Config.Map.BaseSpeed <= 0 {
			return 0
		}
		return x / p.Config.Map.BaseSpeed
	}
	return path[level.PointAtX(path, x)].Time
}

// obstacleGlyph returns the glyph of an obstacle and its draw priority.
// Higher priorities win when several obstacles share a cell.
func obstacleGlyph(o level.Obstacle) (rune, int) {
	switch {
	case o.Role == level.RoleDecoration:
		return GlyphDecoration, 1
	case o.Role == level.RoleTerrain:
		return GlyphTerrain, 2
	case o.Moving():
		return GlyphMoving, 3
	default:
		return GlyphHazard, 4
	}
}
