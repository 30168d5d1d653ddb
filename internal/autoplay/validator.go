// Package autoplay proves a level completable by searching the space of
// hold/release traces. The search is an explicit depth-first state machine
// that can be pumped in bursts with Step or driven to the end with Run;
// both give the same result.
package autoplay

import (
	"math"

	"github.com/AppIemon/umm-sub002/internal/collision"
	"github.com/AppIemon/umm-sub002/internal/config"
	"github.com/AppIemon/umm-sub002/internal/level"
)

// Progress is a snapshot of a running search.
type Progress struct {
	Fraction   float64 // furthest x reached over the level length
	Iterations int
	Done       bool
}

// Result is the outcome of a finished search. Path is the certified trace
// on success and nil on failure.
type Result struct {
	level.ValidationResult
	Path []level.PathPoint
}

// node is one search state. Nodes live in an arena and refer to their
// parent by index.
type node struct {
	x, y       float64
	parent     int32
	step       int32
	lastSwitch int32 // step of the last hold toggle, -1 before the first
	portal     int32 // next portal not yet reached
	speed      uint8 // index into level.SpeedMultipliers
	gravity    bool
	mini       bool
	hold       bool
}

type visitKey struct {
	step  int32
	xb    int32
	yb    int32
	flags uint8
}

// Validator is the state of one search. It is not safe for concurrent use.
type Validator struct {
	cfg     config.Config
	idx     *collision.Index
	portals []level.Portal
	length  float64
	dt      float64
	single  bool // one linear playthrough: portals keep their activation flag

	nodes   []node
	stack   []int32
	visited map[visitKey]struct{}
	scratch []int

	iterations int
	furthest   int32
	done       bool
	result     Result
}

// New prepares a search over the given level. Obstacles are referenced and
// must not change while the validator is in use; portals are copied.
func New(cfg config.Config, obstacles []level.Obstacle, portals []level.Portal, length float64) *Validator {
	ps := append([]level.Portal(nil), portals...)
	level.SortPortals(ps)
	level.ResetPortals(ps)

	v := &Validator{
		cfg:     cfg,
		idx:     collision.NewIndex(collision.New(cfg.Map.Midline()), obstacles),
		portals: ps,
		length:  length,
		dt:      cfg.Search.Dt,
		visited: make(map[visitKey]struct{}),
		scratch: make([]int, 0, 64),
	}

	root := node{
		y:          cfg.Map.ClampY(cfg.Map.Midline()),
		parent:     -1,
		lastSwitch: -1,
		speed:      uint8(level.SpeedIndex(1)),
	}
	v.applyPortals(&root)
	v.nodes = append(v.nodes, root)

	if v.hitExact(root) {
		v.fail()
		return v
	}
	v.visited[v.key(root)] = struct{}{}
	v.stack = append(v.stack, 0)
	return v
}

// Progress returns the current progress without advancing the search.
func (v *Validator) Progress() Progress {
	frac := 0.0
	if v.length > 0 {
		frac = math.Min(1, v.nodes[v.furthest].x/v.length)
	} else if v.done {
		frac = 1
	}
	if v.done && v.result.Success {
		frac = 1
	}
	return Progress{Fraction: frac, Iterations: v.iterations, Done: v.done}
}

// Step runs at most budget iterations and reports progress. Once the search
// is done further calls do nothing.
func (v *Validator) Step(budget int) Progress {
	for n := 0; n < budget && !v.done; n++ {
		v.iterate()
	}
	return v.Progress()
}

// Run drives the search to completion.
func (v *Validator) Run() Result {
	for !v.done {
		v.iterate()
	}
	return v.result
}

// Result returns the outcome. It is only meaningful once Progress reports
// Done.
func (v *Validator) Result() Result {
	return v.result
}

// iterate pops one state and pushes its safe successors.
func (v *Validator) iterate() {
	if len(v.stack) == 0 || v.iterations >= v.cfg.Search.MaxIterations {
		v.fail()
		return
	}
	top := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	v.iterations++

	n := v.nodes[top]
	if n.x > v.nodes[v.furthest].x {
		v.furthest = top
	}
	if n.x >= v.length {
		v.succeed(top)
		return
	}

	var kids [2]node
	count := 0
	for _, hold := range [2]bool{n.hold, !n.hold} {
		if hold != n.hold && !v.canSwitch(n) {
			continue
		}
		c, ok := v.advance(top, n, hold)
		if !ok {
			continue
		}
		k := v.key(c)
		if _, seen := v.visited[k]; seen {
			continue
		}
		v.visited[k] = struct{}{}
		kids[count] = c
		count++
	}

	switch count {
	case 1:
		v.push(kids[0])
	case 2:
		first, second := kids[0], kids[1]
		if v.prefer(n, second, first) {
			first, second = second, first
		}
		// Preferred branch goes on last so it is popped first.
		v.push(second)
		v.push(first)
	}
}

func (v *Validator) push(c node) {
	v.nodes = append(v.nodes, c)
	v.stack = append(v.stack, int32(len(v.nodes)-1))
}

func (v *Validator) key(n node) visitKey {
	var flags uint8
	if n.gravity {
		flags |= 1
	}
	if n.mini {
		flags |= 2
	}
	if n.hold {
		flags |= 4
	}
	flags |= n.speed << 3
	b := v.cfg.Search.YBucket
	return visitKey{
		step:  n.step,
		xb:    int32(math.Floor(n.x / b)),
		yb:    int32(math.Floor(n.y / b)),
		flags: flags,
	}
}

func (v *Validator) succeed(i int32) {
	var rev []level.PathPoint
	for i >= 0 {
		n := v.nodes[i]
		rev = append(rev, level.PathPoint{Time: float64(n.step) * v.dt, X: n.x, Y: n.y, Hold: n.hold})
		i = n.parent
	}
	path := make([]level.PathPoint, len(rev))
	for k, p := range rev {
		path[len(rev)-1-k] = p
	}

	v.done = true
	v.result = Result{
		ValidationResult: level.ValidationResult{
			Success:    true,
			Iterations: v.iterations,
			Progress:   1,
		},
		Path: path,
	}
}

func (v *Validator) fail() {
	far := v.nodes[v.furthest]
	progress := 0.0
	if v.length > 0 {
		progress = math.Min(1, far.x/v.length)
	}
	v.done = true
	v.stack = nil
	v.result = Result{
		ValidationResult: level.ValidationResult{
			FailureX:        far.x,
			FailureY:        far.y,
			NearbyObstacles: v.idx.Near(far.x, far.y, v.cfg.Search.DiagnosticRadius, nil),
			Iterations:      v.iterations,
			Progress:        progress,
		},
	}
}
