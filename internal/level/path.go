package level

import "fmt"

// StateEvent is a change of player state at a point in song time.
type StateEvent struct {
	Time    float64
	Speed   float64 // speed multiplier after the event
	Gravity bool    // true when gravity is inverted
	Mini    bool    // true while in size mode
}

// SameState reports whether two events describe the same player state.
func (e StateEvent) SameState(other StateEvent) bool {
	return e.Speed == other.Speed && e.Gravity == other.Gravity && e.Mini == other.Mini
}

// PathPoint is one sample of a traversal.
type PathPoint struct {
	Time float64
	X, Y float64
	Hold bool
}

// EventError describes a malformed state event list.
type EventError struct {
	Code  string
	Index int
}

func (e EventError) Error() string {
	return fmt.Sprintf("[%s] state event %d", e.Code, e.Index)
}

// ValidateEvents checks that events are strictly time-ordered and that
// consecutive events differ in at least one field. The initial state is
// compared against the first event.
func ValidateEvents(initial StateEvent, events []StateEvent) error {
	prev := initial
	for i, e := range events {
		if i > 0 && e.Time <= events[i-1].Time {
			return EventError{Code: "NOT_ORDERED", Index: i}
		}
		if e.SameState(prev) {
			return EventError{Code: "NO_OP", Index: i}
		}
		prev = e
	}
	return nil
}

// PathLength returns the x of the last point, or 0 for an empty path.
func PathLength(path []PathPoint) float64 {
	if len(path) == 0 {
		return 0
	}
	return path[len(path)-1].X
}

// PointAtTime returns the index of the last path point at or before t.
func PointAtTime(path []PathPoint, t float64) int {
	lo, hi := 0, len(path)-1
	if hi < 0 {
		return -1
	}
	if t <= path[0].Time {
		return 0
	}
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if path[mid].Time <= t {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// PointAtX returns the index of the first path point with X >= x, or the
// last index when x is past the end.
func PointAtX(path []PathPoint, x float64) int {
	lo, hi := 0, len(path)
	for lo < hi {
		mid := (lo + hi) / 2
		if path[mid].X < x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= len(path) {
		return len(path) - 1
	}
	return lo
}
