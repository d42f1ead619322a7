// Package timegrid builds the sample instants a pair is evaluated at.
package timegrid

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNonPositiveStep is returned when the step duration is zero or negative.
	ErrNonPositiveStep = errors.New("timegrid: step must be positive")

	// ErrEmptyRange is returned when end is not strictly after start.
	ErrEmptyRange = errors.New("timegrid: end must be after start")
)

// Build returns the ordered sample instants between start and end at the
// given step. The sequence always begins with exactly start and ends with
// exactly end; every intermediate sample lies strictly inside (start, end).
// A stepped sample that lands on either bound is dropped before the exact
// endpoints are added, so the grid never contains duplicate timestamps.
//
// The result is strictly increasing, which downstream samplers rely on.
func Build(start, end time.Time, step time.Duration) ([]time.Time, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrNonPositiveStep, step)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: start=%v end=%v", ErrEmptyRange, start, end)
	}

	grid := make([]time.Time, 0, int(end.Sub(start)/step)+2)
	grid = append(grid, start)
	for t := start.Add(step); t.Before(end); t = t.Add(step) {
		// t > start by construction; Before(end) keeps it strictly inside.
		grid = append(grid, t)
	}
	grid = append(grid, end)

	return grid, nil
}
