package transit

import (
	"github.com/star/skywatch/internal/ephemeris"
)

// MatchResult is the output of one matcher invocation.
type MatchResult struct {
	Transits []*Transit

	// UnmatchedSets counts set events that closed no transit. They are
	// dropped silently; the count is surfaced for instrumentation only.
	UnmatchedSets int
}

// Match converts a chronologically ordered event stream for one pair into
// disjoint transits. It is a pure function of its inputs: it touches no
// external state and every returned Transit is freshly allocated.
//
// Rise and set events are not assumed to arrive paired 1:1 — a query window
// can open mid-pass, and upstream event finders occasionally report
// near-duplicate sets. Matching therefore runs in three stages:
//
//  1. every rise opens a new transit;
//  2. each set event, in input order, scans the transits from the earliest
//     opened and closes the first one whose end is unset or would be
//     tightened (end after the set instant), provided that transit started
//     strictly before the set instant. After an assignment the scan
//     restarts from the front, so a later near-duplicate set can still
//     tighten an earlier tentative end. Each restart strictly tightens some
//     transit's end bound, so the loop terminates. A set that fits no
//     transit closes nothing;
//  3. culminations attach to every transit that strictly contains them.
//     Open transits never receive culminations.
func Match(events []ephemeris.Event, pair *ephemeris.Pair, minAltDeg float64) MatchResult {
	var transits []*Transit

	for _, e := range events {
		if e.Flag == ephemeris.FlagRise {
			transits = append(transits, &Transit{
				Start:       e.Time,
				Pair:        pair,
				MinAltitude: minAltDeg,
			})
		}
	}

	var unmatched int
	for _, e := range events {
		if e.Flag != ephemeris.FlagSet {
			continue
		}
		closed := false
		for i := 0; i < len(transits); {
			tr := transits[i]
			eligible := (!tr.Closed() || tr.End.After(e.Time)) && tr.Start.Before(e.Time)
			if eligible {
				tr.End = e.Time
				closed = true
				i = 0 // restart: the new bound may re-qualify earlier transits
			} else {
				i++
			}
		}
		if !closed {
			unmatched++
		}
	}

	for _, e := range events {
		if e.Flag != ephemeris.FlagCulminate {
			continue
		}
		for _, tr := range transits {
			if tr.Contains(e.Time) {
				tr.Culminations = append(tr.Culminations, e.Time)
			}
		}
	}

	return MatchResult{Transits: transits, UnmatchedSets: unmatched}
}
