package level

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"sort"
)

// ValidationResult is the outcome of an autoplay search.
type ValidationResult struct {
	Success         bool
	FailureX        float64
	FailureY        float64
	NearbyObstacles []Obstacle
	Iterations      int
	Progress        float64 // fraction of the level length reached
}

// Level is a finished generation attempt.
type Level struct {
	Seed          int64
	Offset        int
	Difficulty    int
	Duration      float64
	Length        float64
	Events        []StateEvent
	Obstacles     []Obstacle
	Portals       []Portal
	ReferencePath []PathPoint
	Validation    ValidationResult
	Attempts      int
}

// SortObstacles orders obstacles ascending by x, then y, then kind.
// The sort is stable so equal keys keep generation order.
func SortObstacles(obs []Obstacle) {
	sort.SliceStable(obs, func(i, j int) bool {
		if obs[i].X != obs[j].X {
			return obs[i].X < obs[j].X
		}
		if obs[i].Y != obs[j].Y {
			return obs[i].Y < obs[j].Y
		}
		return obs[i].Kind < obs[j].Kind
	})
}

// SortPortals orders portals ascending by x and remaps teleport pairs.
func SortPortals(portals []Portal) {
	order := make([]int, len(portals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := portals[order[a]], portals[order[b]]
		if pa.X != pb.X {
			return pa.X < pb.X
		}
		return pa.Kind < pb.Kind
	})

	newIndex := make([]int, len(portals))
	for newPos, oldPos := range order {
		newIndex[oldPos] = newPos
	}
	sorted := make([]Portal, len(portals))
	for newPos, oldPos := range order {
		p := portals[oldPos]
		if p.Pair >= 0 && p.Pair < len(portals) {
			p.Pair = newIndex[p.Pair]
		}
		sorted[newPos] = p
	}
	copy(portals, sorted)
}

// Fingerprint returns a hex SHA-256 digest of the level geometry and the
// reference path. Two levels with the same fingerprint are byte-identical
// in every generated field.
func (l *Level) Fingerprint() string {
	h := sha256.New()
	w := fingerprintWriter{h: h}

	w.int(int64(len(l.Obstacles)))
	for _, o := range l.Obstacles {
		w.int(int64(o.Kind))
		w.int(int64(o.Role))
		w.floats(o.X, o.Y, o.W, o.H, o.Rotation)
		w.int(int64(o.Orientation))
		if o.Movement != nil {
			w.int(1)
			w.int(int64(o.Movement.Kind))
			w.floats(o.Movement.Range, o.Movement.Speed, o.Movement.Phase, o.Movement.BaselineY)
		} else {
			w.int(0)
		}
		p := o.Params
		w.floats(p.PulseRate, p.PulseDuty, p.OrbitRadius, p.OrbitSpeed, p.SatelliteRadius)
		w.int(int64(p.OrbitCount))
		w.int(int64(len(o.Satellites)))
		for _, s := range o.Satellites {
			w.floats(s.Distance, s.Radius, s.Speed, s.Phase)
			w.int(int64(len(s.Moons)))
			for _, m := range s.Moons {
				w.floats(m.Distance, m.Radius, m.Speed, m.Phase)
			}
		}
	}

	w.int(int64(len(l.Portals)))
	for _, p := range l.Portals {
		w.int(int64(p.Kind))
		w.floats(p.X, p.Y, p.W, p.H)
		w.int(int64(p.Pair))
	}

	w.int(int64(len(l.ReferencePath)))
	for _, pt := range l.ReferencePath {
		w.floats(pt.Time, pt.X, pt.Y)
		if pt.Hold {
			w.int(1)
		} else {
			w.int(0)
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

type fingerprintWriter struct {
	h   hash.Hash
	buf [8]byte
}

func (w *fingerprintWriter) int(v int64) {
	binary.LittleEndian.PutUint64(w.buf[:], uint64(v))
	w.h.Write(w.buf[:])
}

func (w *fingerprintWriter) floats(vs ...float64) {
	for _, v := range vs {
		binary.LittleEndian.PutUint64(w.buf[:], math.Float64bits(v))
		w.h.Write(w.buf[:])
	}
}
