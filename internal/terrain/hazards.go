package terrain

import (
	"math"

	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/registry"
)

func init() {
	registry.Register(registry.HazardInfo{ID: "spike", Title: "Spike", Placement: registry.PlaceFloor, Pool: "spikes"}, floorSpike)
	registry.Register(registry.HazardInfo{ID: "spike_pair", Title: "Spike Pair", Placement: registry.PlaceFloor, Pool: "spikes", MinTier: 1}, spikePair)
	registry.Register(registry.HazardInfo{ID: "pillar", Title: "Pillar", Placement: registry.PlaceFloor, Pool: "blocks"}, pillar)
	registry.Register(registry.HazardInfo{ID: "floor_saw", Title: "Floor Saw", Placement: registry.PlaceFloor, Pool: "saws", MinTier: 1}, edgeSaw(false))
	registry.Register(registry.HazardInfo{ID: "bouncer", Title: "Bouncer", Placement: registry.PlaceFloor, Pool: "saws", MinTier: 2}, bouncer)

	registry.Register(registry.HazardInfo{ID: "ceiling_spike", Title: "Ceiling Spike", Placement: registry.PlaceCeiling, Pool: "spikes"}, ceilingSpike(level.KindSpike))
	registry.Register(registry.HazardInfo{ID: "falling_spike", Title: "Falling Spike", Placement: registry.PlaceCeiling, Pool: "spikes", MinTier: 1}, ceilingSpike(level.KindFallingSpike))
	registry.Register(registry.HazardInfo{ID: "stalactite", Title: "Stalactite", Placement: registry.PlaceCeiling, Pool: "blocks"}, stalactite)
	registry.Register(registry.HazardInfo{ID: "ceiling_saw", Title: "Ceiling Saw", Placement: registry.PlaceCeiling, Pool: "saws", MinTier: 1}, edgeSaw(true))

	registry.Register(registry.HazardInfo{ID: "mine", Title: "Mine", Placement: registry.PlaceFloating, Pool: "mines"}, mine(false))
	registry.Register(registry.HazardInfo{ID: "drifting_mine", Title: "Drifting Mine", Placement: registry.PlaceFloating, Pool: "mines", MinTier: 1}, mine(true))
	registry.Register(registry.HazardInfo{ID: "laser", Title: "Laser", Placement: registry.PlaceFloating, Pool: "lasers", MinTier: 1}, laserH)
	registry.Register(registry.HazardInfo{ID: "laser_post", Title: "Laser Post", Placement: registry.PlaceFloating, Pool: "lasers", MinTier: 2}, laserV)
	registry.Register(registry.HazardInfo{ID: "planet", Title: "Planet", Placement: registry.PlaceFloating, Pool: "orbits", MinTier: 2}, planet)
	registry.Register(registry.HazardInfo{ID: "star", Title: "Star", Placement: registry.PlaceFloating, Pool: "orbits", MinTier: 3}, star)
	registry.Register(registry.HazardInfo{ID: "rotor", Title: "Rotor", Placement: registry.PlaceFloating, Pool: "rotors", MinTier: 3}, rotor)
}

func centerX(s registry.Slot) float64 {
	return s.X + s.Width/2
}

func floorSpike(s registry.Slot) []level.Obstacle {
	if s.Room < 20 {
		return nil
	}
	w, h := 30.0, math.Min(30, s.Room)
	o := level.NewObstacle(level.KindSpike, level.RoleHazard, centerX(s)-w/2, s.Anchor-h, w, h)
	o.Orientation = level.OrientFloor
	return []level.Obstacle{o}
}

func spikePair(s registry.Slot) []level.Obstacle {
	if s.Room < 18 {
		return nil
	}
	w, h := 20.0, math.Min(26, s.Room)
	left := level.NewObstacle(level.KindSpike, level.RoleHazard, centerX(s)-w, s.Anchor-h, w, h)
	left.Orientation = level.OrientFloor
	right := left
	right.X += w
	return []level.Obstacle{left, right}
}

func pillar(s registry.Slot) []level.Obstacle {
	if s.Room < 20 {
		return nil
	}
	h := math.Min(s.Room, 20+s.Roll*40)
	return []level.Obstacle{level.NewObstacle(level.KindBlock, level.RoleHazard, centerX(s)-10, s.Anchor-h, 20, h)}
}

// edgeSaw is a spinning saw half buried in the floor or ceiling.
func edgeSaw(ceiling bool) registry.Factory {
	return func(s registry.Slot) []level.Obstacle {
		r := math.Min(22, s.Room)
		if r < 12 {
			return nil
		}
		o := level.NewObstacle(level.KindSaw, level.RoleHazard, centerX(s)-r, s.Anchor-r, 2*r, 2*r)
		phase := 0.0
		if ceiling {
			phase = math.Pi / 4
		}
		return []level.Obstacle{o.WithMovement(level.Movement{Kind: level.MoveRotate, Speed: 3 + 3*s.Roll, Phase: phase})}
	}
}

// bouncer is a ball bobbing above the floor without ever touching it.
func bouncer(s registry.Slot) []level.Obstacle {
	const r = 10.0
	if s.Room < 2*r+10 {
		return nil
	}
	rng := math.Min(40, (s.Room-2*r)/2)
	base := s.Anchor - 2*r - rng
	o := level.NewObstacle(level.KindBall, level.RoleHazard, centerX(s)-r, base, 2*r, 2*r)
	return []level.Obstacle{o.WithMovement(level.Movement{
		Kind:      level.MoveOscillate,
		Range:     rng,
		Speed:     2 + 2*s.Roll,
		Phase:     s.Roll * 2 * math.Pi,
		BaselineY: base,
	})}
}

func ceilingSpike(kind level.Kind) registry.Factory {
	return func(s registry.Slot) []level.Obstacle {
		if s.Room < 20 {
			return nil
		}
		w, h := 30.0, math.Min(30, s.Room)
		o := level.NewObstacle(kind, level.RoleHazard, centerX(s)-w/2, s.Anchor, w, h)
		o.Orientation = level.OrientCeiling
		return []level.Obstacle{o}
	}
}

func stalactite(s registry.Slot) []level.Obstacle {
	if s.Room < 20 {
		return nil
	}
	h := math.Min(s.Room, 20+s.Roll*40)
	return []level.Obstacle{level.NewObstacle(level.KindBlock, level.RoleHazard, centerX(s)-10, s.Anchor, 20, h)}
}

func mine(drift bool) registry.Factory {
	return func(s registry.Slot) []level.Obstacle {
		r := math.Min(14, s.Room/2)
		if r < 8 {
			return nil
		}
		o := level.NewObstacle(level.KindMine, level.RoleHazard, centerX(s)-r, s.Anchor-r, 2*r, 2*r)
		if !drift {
			return []level.Obstacle{o}
		}
		rng := math.Min(30, s.Room/2-r)
		if rng < 4 {
			return nil
		}
		return []level.Obstacle{o.WithMovement(level.Movement{
			Kind:      level.MoveOscillate,
			Range:     rng,
			Speed:     1 + s.Roll,
			BaselineY: o.Y,
		})}
	}
}

func laserH(s registry.Slot) []level.Obstacle {
	const h = 10.0
	if s.Room < h {
		return nil
	}
	w := 2 * s.Width
	o := level.NewObstacle(level.KindLaserH, level.RoleHazard, centerX(s)-w/2, s.Anchor-h/2, w, h)
	o.Params.PulseRate = 0.5 + s.Roll
	o.Params.PulseDuty = 0.5
	return []level.Obstacle{o}
}

func laserV(s registry.Slot) []level.Obstacle {
	h := math.Min(80, s.Room)
	if h < 20 {
		return nil
	}
	o := level.NewObstacle(level.KindLaserV, level.RoleHazard, centerX(s)-5, s.Anchor-h/2, 10, h)
	o.Params.PulseRate = 0.5 + s.Roll
	o.Params.PulseDuty = 0.6
	return []level.Obstacle{o}
}

func planet(s registry.Slot) []level.Obstacle {
	const body, sat = 10.0, 5.0
	radius := math.Min(30, s.Room/2-sat)
	if radius < body+sat+4 {
		return nil
	}
	o := level.NewObstacle(level.KindPlanet, level.RoleHazard, centerX(s)-body, s.Anchor-body, 2*body, 2*body)
	o.Params.OrbitCount = 2
	o.Params.OrbitRadius = radius
	o.Params.OrbitSpeed = 1 + s.Roll
	o.Params.SatelliteRadius = sat
	return []level.Obstacle{o}
}

func star(s registry.Slot) []level.Obstacle {
	const body, sat, moon, moonDist = 8.0, 5.0, 3.0, 10.0
	dist := math.Min(30, s.Room/2-moonDist-moon)
	if dist < body+sat+4 {
		return nil
	}
	o := level.NewObstacle(level.KindStar, level.RoleHazard, centerX(s)-body, s.Anchor-body, 2*body, 2*body)
	o.Satellites = []level.Satellite{{
		Distance: dist,
		Radius:   sat,
		Speed:    1.2,
		Phase:    s.Roll * 2 * math.Pi,
		Moons:    []level.Moon{{Distance: moonDist, Radius: moon, Speed: 3}},
	}}
	return []level.Obstacle{o}
}

func rotor(s registry.Slot) []level.Obstacle {
	const w, h = 60.0, 8.0
	if s.Room < 2*math.Hypot(w/2, h/2) {
		return nil
	}
	o := level.NewObstacle(level.KindBlock, level.RoleHazard, centerX(s)-w/2, s.Anchor-h/2, w, h)
	return []level.Obstacle{o.WithMovement(level.Movement{Kind: level.MoveRotate, Speed: 1.5, Phase: s.Roll * math.Pi})}
}
