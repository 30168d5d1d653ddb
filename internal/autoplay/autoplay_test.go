package autoplay

import (
	"math"
	"reflect"
	"testing"

	"github.com/jakecoffman/cp"

	"github.com/AppIemon/umm-sub002/internal/config"
	"github.com/AppIemon/umm-sub002/internal/level"
)

func block(x, y, w, h float64) level.Obstacle {
	return level.NewObstacle(level.KindBlock, level.RoleTerrain, x, y, w, h)
}

// corridor has two walls with openings at different heights.
func corridor() []level.Obstacle {
	return []level.Obstacle{
		block(-40, -80, 1500, 160), // ceiling down to 80
		block(-40, 400, 1500, 160), // floor from 400
		block(600, 80, 40, 120),    // opening 200..400
		block(1000, 280, 40, 120),  // opening 80..280
		level.NewObstacle(level.KindOrb, level.RoleDecoration, 800, 230, 16, 16),
	}
}

func checkPath(t *testing.T, cfg config.Config, obs []level.Obstacle, portals []level.Portal, res Result, length float64) {
	t.Helper()
	if !res.Success {
		t.Fatalf("search failed at (%.1f, %.1f) after %d iterations", res.FailureX, res.FailureY, res.Iterations)
	}
	if len(res.Path) == 0 {
		t.Fatal("empty path")
	}
	if last := res.Path[len(res.Path)-1]; last.X < length {
		t.Errorf("path ends at x=%.1f before %.1f", last.X, length)
	}
	for i := 1; i < len(res.Path); i++ {
		if res.Path[i].X < res.Path[i-1].X {
			t.Fatalf("x decreases at %d", i)
		}
	}
	if i := Replay(cfg, obs, portals, res.Path); i >= 0 {
		p := res.Path[i]
		t.Errorf("replay collides at point %d (%.1f, %.1f)", i, p.X, p.Y)
	}
}

func TestEmptyLevel(t *testing.T) {
	cfg := config.Default()
	res := New(cfg, nil, nil, 600).Run()
	checkPath(t, cfg, nil, nil, res, 600)

	// Nothing to back out of: every pop extends the path.
	if res.Iterations != len(res.Path) {
		t.Errorf("iterations = %d, path points = %d", res.Iterations, len(res.Path))
	}
	if res.Progress != 1 {
		t.Errorf("progress = %v", res.Progress)
	}
}

func TestZeroLength(t *testing.T) {
	res := New(config.Default(), nil, nil, 0).Run()
	if !res.Success || len(res.Path) != 1 {
		t.Errorf("Run() = %+v", res)
	}
}

func TestCorridor(t *testing.T) {
	cfg := config.Default()
	obs := corridor()
	res := New(cfg, obs, nil, 1400).Run()
	checkPath(t, cfg, obs, nil, res, 1400)
}

func TestStepMatchesRun(t *testing.T) {
	cfg := config.Default()
	obs := corridor()

	want := New(cfg, obs, nil, 1400).Run()

	v := New(cfg, obs, nil, 1400)
	last := 0.0
	for {
		p := v.Step(7)
		if p.Fraction < last {
			t.Fatalf("progress went backwards: %v < %v", p.Fraction, last)
		}
		last = p.Fraction
		if p.Done {
			break
		}
	}
	if got := v.Result(); !reflect.DeepEqual(got, want) {
		t.Error("Step-pumped result differs from Run")
	}
	if p := v.Step(10); !p.Done || p.Fraction != 1 {
		t.Errorf("Step after completion = %+v", p)
	}
}

func TestBlockedLevel(t *testing.T) {
	cfg := config.Default()
	wall := block(300, -100, 40, 700)
	res := New(cfg, []level.Obstacle{wall}, nil, 600).Run()
	if res.Success {
		t.Fatal("search passed a full-height wall")
	}
	if res.FailureX >= 300 || res.FailureX < 250 {
		t.Errorf("failure x = %.1f, expected just before the wall", res.FailureX)
	}
	found := false
	for _, o := range res.NearbyObstacles {
		if o.X == wall.X {
			found = true
		}
	}
	if !found {
		t.Error("wall missing from nearby obstacles")
	}
	if res.Progress <= 0 || res.Progress >= 1 {
		t.Errorf("progress = %v", res.Progress)
	}
	if res.Path != nil {
		t.Error("failed search should not return a path")
	}
}

func TestIterationBudget(t *testing.T) {
	cfg := config.Default()
	cfg.Search.MaxIterations = 50
	v := New(cfg, nil, nil, 5000)
	res := v.Run()
	if res.Success {
		t.Fatal("search should run out of budget")
	}
	if res.Iterations != 50 {
		t.Errorf("iterations = %d, expected 50", res.Iterations)
	}
	if !v.Progress().Done {
		t.Error("validator should be done")
	}
}

func TestBlockedStart(t *testing.T) {
	cfg := config.Default()
	res := New(cfg, []level.Obstacle{block(-50, 200, 100, 100)}, nil, 600).Run()
	if res.Success || res.FailureX != 0 || res.Iterations != 0 {
		t.Errorf("Run() = %+v", res.ValidationResult)
	}
}

func TestGravityPortal(t *testing.T) {
	cfg := config.Default()
	m := cfg.Map
	portals := []level.Portal{level.NewPortal(level.PortalGravityOn, 150, 240)}
	res := New(cfg, nil, portals, 600).Run()
	checkPath(t, cfg, nil, portals, res, 600)

	for i := 0; i+1 < len(res.Path); i++ {
		a, b := res.Path[i], res.Path[i+1]
		dy := b.Y - a.Y
		if b.Y == m.ClampY(b.Y+100) || b.Y == m.ClampY(b.Y-100) || dy == 0 {
			continue // clamped at the margin
		}
		inverted := a.X >= 150
		if got, want := math.Copysign(1, dy), m.Direction(b.Hold, inverted); got != want {
			t.Fatalf("point %d at x=%.0f moves %v, expected %v (inverted=%v)", i, a.X, got, want, inverted)
		}
	}
}

func TestSpeedPortal(t *testing.T) {
	cfg := config.Default()
	portals := []level.Portal{level.NewPortal(level.PortalSpeedFastest, 150, 240)}
	res := New(cfg, nil, portals, 600).Run()
	checkPath(t, cfg, nil, portals, res, 600)

	for i := 0; i+1 < len(res.Path); i++ {
		a, b := res.Path[i], res.Path[i+1]
		want := cfg.Map.BaseSpeed * cfg.Search.Dt
		if a.X >= 150 {
			want *= 2
		}
		if math.Abs((b.X-a.X)-want) > 1e-6 {
			t.Fatalf("step %d at x=%.0f moved %.3f, expected %.3f", i, a.X, b.X-a.X, want)
		}
	}
}

func TestPortalMissedOutsideRange(t *testing.T) {
	cfg := config.Default()
	// A portal far above the midline is never touched.
	portals := []level.Portal{level.NewPortal(level.PortalSpeedFastest, 150, 60)}
	res := New(cfg, nil, portals, 300).Run()
	checkPath(t, cfg, nil, portals, res, 300)
	for i := 0; i+1 < len(res.Path); i++ {
		if dx := res.Path[i+1].X - res.Path[i].X; dx > 10+1e-6 {
			t.Fatalf("speed changed at x=%.0f without touching the portal", res.Path[i].X)
		}
	}
}

func TestTeleport(t *testing.T) {
	cfg := config.Default()
	in := level.NewPortal(level.PortalTeleportIn, 150, 240)
	in.Pair = 1
	out := level.NewPortal(level.PortalTeleportOut, 400, 100)
	v := New(cfg, nil, []level.Portal{in, out}, 300)

	n := v.nodes[0]
	n.x, n.y = 150, 240
	v.applyPortals(&n)
	if n.y != 100 {
		t.Errorf("teleport moved to y=%v, expected 100", n.y)
	}
}

func TestReplayDetectsCollision(t *testing.T) {
	cfg := config.Default()
	obs := []level.Obstacle{block(100, 200, 40, 80)}
	path := []level.PathPoint{
		{Time: 0, X: 0, Y: 240},
		{Time: 1.0 / 30, X: 10, Y: 240},
		{Time: 11.0 / 30, X: 110, Y: 240},
	}
	if got := Replay(cfg, obs, nil, path); got != 2 {
		t.Errorf("Replay() = %d, expected 2", got)
	}
	path[2].Y = 400
	if got := Replay(cfg, obs, nil, path); got != -1 {
		t.Errorf("Replay() = %d, expected -1", got)
	}
	path[2].Y = 470
	if got := Replay(cfg, obs, nil, path); got != 2 {
		t.Errorf("Replay() out of bounds = %d, expected 2", got)
	}
}

func TestReplayActivatesPortalsOnce(t *testing.T) {
	cfg := config.Default()
	portals := []level.Portal{
		level.NewPortal(level.PortalMiniOff, 300, 60), // above the trace
		level.NewPortal(level.PortalMiniOn, 200, 240),
	}
	var path []level.PathPoint
	for x := 0.0; x <= 400; x += 10 {
		path = append(path, level.PathPoint{Time: x / cfg.Map.BaseSpeed, X: x, Y: 240})
	}

	for run := range 2 {
		got, v := replay(cfg, nil, portals, path)
		if got != -1 {
			t.Fatalf("run %d: replay() = %d, expected -1", run, got)
		}
		// Portals are sorted by x inside the validator.
		if !v.portals[0].Activated {
			t.Errorf("run %d: portal on the trace not activated", run)
		}
		if v.portals[0].Activate() {
			t.Errorf("run %d: portal could be activated a second time", run)
		}
		if v.portals[1].Activated {
			t.Errorf("run %d: portal above the trace activated", run)
		}
	}
	for i, p := range portals {
		if p.Activated {
			t.Errorf("caller portal %d was modified", i)
		}
	}
}

func TestGapCenter(t *testing.T) {
	cfg := config.Default()
	obs := []level.Obstacle{
		block(0, -80, 100, 180), // to 100
		block(0, 300, 100, 260), // from 300
		block(40, 90, 20, 20),   // overlaps the ceiling
		level.NewObstacle(level.KindOrb, level.RoleDecoration, 40, 190, 10, 10),
	}
	v := New(cfg, obs, nil, 100)

	tests := []struct {
		name     string
		y        float64
		expected float64
	}{
		{"inside", 150, 205},
		{"above", 20, 205},
		{"below", 470, 205},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := v.gapCenter(50, tc.y, 0, 24); got != tc.expected {
				t.Errorf("gapCenter() = %v, expected %v", got, tc.expected)
			}
		})
	}

	empty := New(cfg, nil, nil, 100)
	if got := empty.gapCenter(50, 100, 0, 24); got != cfg.Map.Midline() {
		t.Errorf("open field gap center = %v", got)
	}
}

func TestSwitchLock(t *testing.T) {
	cfg := config.Default()
	v := New(cfg, nil, nil, 600)
	n := node{x: 100, y: 240, step: 10, lastSwitch: 9, speed: uint8(level.SpeedIndex(1)), hold: true}
	if v.canSwitch(n) {
		t.Error("toggle allowed one frame after the last one")
	}
	n.lastSwitch = 5
	if !v.canSwitch(n) {
		t.Error("toggle refused after the interval")
	}

	// Escape hatch: far below center and still moving down.
	n = node{x: 100, y: 400, step: 10, lastSwitch: 9, speed: uint8(level.SpeedIndex(1)), hold: false}
	if !v.canSwitch(n) {
		t.Error("escape hatch should allow the toggle")
	}

	// About to hit a wall while locked.
	walled := New(cfg, []level.Obstacle{block(0, 180, 600, 40)}, nil, 600)
	n = node{x: 100, y: 240, step: 10, lastSwitch: 9, speed: uint8(level.SpeedIndex(1)), hold: true}
	if !walled.canSwitch(n) {
		t.Error("toggle should be allowed when holding on crashes")
	}
}

func TestFallingPreference(t *testing.T) {
	cfg := config.Default()
	spike := level.NewObstacle(level.KindFallingSpike, level.RoleHazard, 200, 80, 30, 30)
	v := New(cfg, []level.Obstacle{spike}, nil, 600)
	n := node{x: 100, y: 240, step: 10, lastSwitch: -1, speed: uint8(level.SpeedIndex(1))}
	up := node{x: 110, y: 230, step: 11, hold: true}
	down := node{x: 110, y: 250, step: 11}
	if !v.prefer(n, down, up) {
		t.Error("lower branch should be preferred under a falling hazard")
	}
	n.gravity = true
	if !v.prefer(n, up, down) {
		t.Error("upper branch should be preferred with inverted gravity")
	}
}

func TestDeterministic(t *testing.T) {
	cfg := config.Default()
	obs := corridor()
	a := New(cfg, obs, nil, 1400).Run()
	b := New(cfg, obs, nil, 1400).Run()
	if !reflect.DeepEqual(a, b) {
		t.Error("search is not deterministic")
	}
}

func TestMidpointCatchesThinWall(t *testing.T) {
	cfg := config.Default()
	// Mini mode at double speed moves 20 units a frame with a 14 unit
	// hitbox, so a thin wall can sit between the two endpoint checks.
	wall := block(108.5, 0, 2, 480)

	n := node{
		x:          100,
		y:          240,
		parent:     -1,
		lastSwitch: -1,
		speed:      uint8(level.SpeedIndex(2)),
		mini:       true,
	}

	for _, hold := range []bool{false, true} {
		open := New(cfg, nil, nil, 1000)
		c, ok := open.advance(0, n, hold)
		if !ok {
			t.Fatalf("hold=%v: open field move rejected", hold)
		}
		if step := c.x - n.x; math.Abs(step-20) > 1e-6 {
			t.Fatalf("hold=%v: x step = %v, want 20", hold, step)
		}

		v := New(cfg, []level.Obstacle{wall}, nil, 1000)
		if v.hitExact(n) || v.hitExact(c) {
			t.Fatalf("hold=%v: endpoint hitboxes should miss the wall", hold)
		}
		if v.hitInflated(cp.Vector{X: c.x, Y: c.y}, v.hitbox(c), v.time(c.step)) {
			t.Fatalf("hold=%v: inflated destination should miss the wall", hold)
		}
		if _, ok := v.advance(0, n, hold); ok {
			t.Errorf("hold=%v: move through a wall between frames was accepted", hold)
		}
	}
}
