// Package transit converts raw rise/culminate/set event streams into
// well-formed observable passes.
package transit

import (
	"time"

	"github.com/star/skywatch/internal/ephemeris"
)

// Transit is one observable pass of a tracked object over an observatory:
// the interval during which the object stays above the altitude threshold
// it was generated with.
//
// Start is always set. End is the zero time while the pass is still open;
// it is assigned at most one final value by the matcher. A transit left
// open means the object was still up when the query window closed — that
// is a valid result, not an error. Culminations are only recorded for
// closed transits and always fall strictly between Start and End.
type Transit struct {
	Start        time.Time
	End          time.Time
	Culminations []time.Time

	// Pair and MinAltitude identify what produced this transit, so callers
	// can sample positions over the pass afterwards.
	Pair        *ephemeris.Pair
	MinAltitude float64
}

// Closed reports whether the transit's end has been resolved.
func (tr *Transit) Closed() bool {
	return !tr.End.IsZero()
}

// Duration returns the length of a closed transit, or zero while open.
func (tr *Transit) Duration() time.Duration {
	if !tr.Closed() {
		return 0
	}
	return tr.End.Sub(tr.Start)
}

// Contains reports whether t falls strictly inside the transit interval.
// Always false for an open transit.
func (tr *Transit) Contains(t time.Time) bool {
	return tr.Closed() && t.After(tr.Start) && t.Before(tr.End)
}
