package collision

import (
	"sort"

	"github.com/jakecoffman/cp"

	"github.com/AppIemon/umm-sub002/internal/core"
	"github.com/AppIemon/umm-sub002/internal/level"
)

// Index is a broadphase over obstacles sorted by the left edge of their
// swept bounds. It is read-only after construction.
type Index struct {
	engine    Engine
	obstacles []level.Obstacle
	bounds    []core.Rect
	order     []int // obstacle indices sorted by bounds.X
	maxWidth  float64
}

// NewIndex builds a broadphase index. The obstacle slice is referenced, not
// copied, and must not be mutated while the index is in use.
func NewIndex(engine Engine, obstacles []level.Obstacle) *Index {
	idx := &Index{
		engine:    engine,
		obstacles: obstacles,
		bounds:    make([]core.Rect, len(obstacles)),
		order:     make([]int, len(obstacles)),
	}
	for i, o := range obstacles {
		idx.bounds[i] = Bounds(o)
		idx.order[i] = i
		if idx.bounds[i].W > idx.maxWidth {
			idx.maxWidth = idx.bounds[i].W
		}
	}
	sort.SliceStable(idx.order, func(a, b int) bool {
		return idx.bounds[idx.order[a]].X < idx.bounds[idx.order[b]].X
	})
	return idx
}

// Len returns the number of indexed obstacles.
func (idx *Index) Len() int {
	return len(idx.obstacles)
}

// Obstacle returns the i-th obstacle.
func (idx *Index) Obstacle(i int) level.Obstacle {
	return idx.obstacles[i]
}

// Bounds returns the swept bounds of the i-th obstacle.
func (idx *Index) Bounds(i int) core.Rect {
	return idx.bounds[i]
}

// Query appends to dst the indices of obstacles whose swept bounds overlap
// the horizontal range [minX, maxX], in ascending bounds order.
func (idx *Index) Query(minX, maxX float64, dst []int) []int {
	from := minX - idx.maxWidth
	start := sort.Search(len(idx.order), func(k int) bool {
		return idx.bounds[idx.order[k]].X >= from
	})
	for k := start; k < len(idx.order); k++ {
		i := idx.order[k]
		b := idx.bounds[i]
		if b.X > maxX {
			break
		}
		if b.Right() >= minX {
			dst = append(dst, i)
		}
	}
	return dst
}

// Hit returns the index of the first lethal obstacle overlapping the hitbox
// at time t. Moving obstacles are tested with the hitbox grown by
// movingMargin on every side.
func (idx *Index) Hit(center, size cp.Vector, movingMargin, t float64, scratch []int) (int, bool) {
	reach := size.X/2 + movingMargin
	candidates := idx.Query(center.X-reach, center.X+reach, scratch[:0])
	for _, i := range candidates {
		o := idx.obstacles[i]
		if !o.Lethal() {
			continue
		}
		b := idx.bounds[i]
		if b.Y > center.Y+size.Y/2+movingMargin || b.Bottom() < center.Y-size.Y/2-movingMargin {
			continue
		}
		s := size
		if movingMargin > 0 && o.Moving() {
			s = cp.Vector{X: size.X + 2*movingMargin, Y: size.Y + 2*movingMargin}
		}
		if idx.engine.Collides(o, center, s, t) {
			return i, true
		}
	}
	return -1, false
}

// Near appends to dst the obstacles whose swept bounds come within radius
// of the point (x, y).
func (idx *Index) Near(x, y, radius float64, dst []level.Obstacle) []level.Obstacle {
	for _, i := range idx.Query(x-radius, x+radius, nil) {
		b := idx.bounds[i]
		if b.Y > y+radius || b.Bottom() < y-radius {
			continue
		}
		dst = append(dst, idx.obstacles[i])
	}
	return dst
}
