package core

// RNG is a deterministic pseudo-random number generator (xorshift64).
// It is used instead of math/rand so that generated levels are reproducible
// across Go releases.
type RNG struct {
	state uint64
}

// NewRNG creates a new RNG with the given seed.
func NewRNG(seed uint64) *RNG {
	if seed == 0 {
		seed = 88172645463325252 // xorshift cannot leave the zero state
	}
	return &RNG{state: seed}
}

// Next returns the next random uint64.
func (r *RNG) Next() uint64 {
	r.state ^= r.state << 13
	r.state ^= r.state >> 7
	r.state ^= r.state << 17
	return r.state
}

// Float returns a random float64 in [0, 1).
func (r *RNG) Float() float64 {
	return float64(r.Next()>>11) / float64(1<<53)
}

// Range returns a random float64 in [lo, hi).
func (r *RNG) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float()
}

// Intn returns a random int in [0, n).
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint64(n))
}

// Chance returns true with probability p.
func (r *RNG) Chance(p float64) bool {
	return r.Float() < p
}

// Weighted picks an index with probability proportional to weights.
// Non-positive weights are never picked; returns 0 if all are non-positive.
func (r *RNG) Weighted(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}
	pick := r.Float() * total
	cumulative := 0.0
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		last = i
		if pick < cumulative {
			return i
		}
	}
	return last
}

// splitmix64 finalizer.
func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// MixSeed derives a generation seed from a base seed and an attempt offset.
// Different offsets yield unrelated streams.
func MixSeed(seed int64, offset int) uint64 {
	return mix64(uint64(seed) ^ mix64(uint64(int64(offset))+0x632be59bd9b4e019))
}

// HashCell returns a deterministic value in [0, 1) for a cell coordinate.
// The salt separates independent rolls made for the same cell.
func HashCell(seed uint64, cx, cy int, salt uint64) float64 {
	h := mix64(seed ^ mix64(uint64(int64(cx))) ^ mix64(uint64(int64(cy))<<1) ^ mix64(salt+1))
	return float64(h>>11) / float64(1<<53)
}
