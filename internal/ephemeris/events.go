package ephemeris

import "time"

// EventFlag labels a raw propagator event. The numeric values match the
// rise/culminate/set convention of the upstream event finders.
type EventFlag int

const (
	FlagRise      EventFlag = 0 // object crosses above the altitude threshold
	FlagCulminate EventFlag = 1 // local maximum altitude
	FlagSet       EventFlag = 2 // object crosses below the altitude threshold
)

// String returns the conventional lowercase name of the flag.
func (f EventFlag) String() string {
	switch f {
	case FlagRise:
		return "rise"
	case FlagCulminate:
		return "culminate"
	case FlagSet:
		return "set"
	default:
		return "unknown"
	}
}

// Event is a single raw rise/culminate/set event reported for a pair.
// FindEvents produces them in chronological order.
type Event struct {
	Time time.Time
	Flag EventFlag
}
