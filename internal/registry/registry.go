// Package registry provides a global registry for hazard factories.
// Hazards register themselves in init() functions, allowing the terrain
// generator to discover them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/AppIemon/umm-sub002/internal/level"
)

// Placement is where in the tunnel a hazard is built.
type Placement uint8

const (
	PlaceFloor Placement = iota
	PlaceCeiling
	PlaceFloating
)

// String returns the string representation of a placement.
func (p Placement) String() string {
	switch p {
	case PlaceFloor:
		return "floor"
	case PlaceCeiling:
		return "ceiling"
	case PlaceFloating:
		return "floating"
	default:
		return "unknown"
	}
}

// Slot describes the space a hazard may occupy.
type Slot struct {
	X      float64 // left edge of the cell
	Width  float64 // cell width
	Anchor float64 // floor Y, ceiling Y, or the center of a floating band
	Room   float64 // vertical space available from the anchor toward the path
	Roll   float64 // deterministic value in [0, 1) for variant choices
	Tier   int
}

// Factory builds the obstacles of one hazard in a slot. It returns nil when
// the hazard does not fit.
type Factory func(s Slot) []level.Obstacle

// HazardInfo contains metadata about a registered hazard.
type HazardInfo struct {
	ID        string
	Title     string
	Placement Placement
	Pool      string // hazards sharing a pool are interchangeable
	MinTier   int    // lowest difficulty tier the hazard appears in
}

// Pool is a named group of hazards available at a tier.
type Pool struct {
	Name    string
	Hazards []HazardInfo
}

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]HazardInfo)
	mu        sync.RWMutex
)

// Register adds a hazard factory to the registry.
// Typically called from an init() function.
// Panics if a hazard with the same ID is already registered.
func Register(info HazardInfo, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[info.ID]; exists {
		panic(fmt.Sprintf("registry: hazard %q already registered", info.ID))
	}

	factories[info.ID] = f
	infos[info.ID] = info
}

// List returns information about all registered hazards, sorted by ID.
func List() []HazardInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]HazardInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Pools returns the pools holding at least one hazard for the placement at
// the given tier. Pools are sorted by name and their hazards by ID, so the
// result does not depend on registration order.
func Pools(p Placement, tier int) []Pool {
	byName := make(map[string][]HazardInfo)
	for _, info := range List() {
		if info.Placement != p || info.MinTier > tier {
			continue
		}
		byName[info.Pool] = append(byName[info.Pool], info)
	}

	pools := make([]Pool, 0, len(byName))
	for name, hazards := range byName {
		pools = append(pools, Pool{Name: name, Hazards: hazards})
	}
	sort.Slice(pools, func(i, j int) bool {
		return pools[i].Name < pools[j].Name
	})
	return pools
}

// Build runs the factory of a hazard.
// Returns an error if the hazard ID is not registered.
func Build(id string, s Slot) ([]level.Obstacle, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown hazard %q", id)
	}
	return f(s), nil
}
