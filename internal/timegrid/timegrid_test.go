package timegrid

import (
	"errors"
	"testing"
	"time"
)

var gridStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestBuildEvenDivision(t *testing.T) {
	// 10 minutes in 2-minute steps: the stepped sample at the end bound must
	// not duplicate the explicit end.
	end := gridStart.Add(10 * time.Minute)
	grid, err := Build(gridStart, end, 2*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []time.Time{
		gridStart,
		gridStart.Add(2 * time.Minute),
		gridStart.Add(4 * time.Minute),
		gridStart.Add(6 * time.Minute),
		gridStart.Add(8 * time.Minute),
		end,
	}
	if len(grid) != len(want) {
		t.Fatalf("grid length = %d, want %d (%v)", len(grid), len(want), grid)
	}
	for i := range want {
		if !grid[i].Equal(want[i]) {
			t.Errorf("grid[%d] = %v, want %v", i, grid[i], want[i])
		}
	}
}

func TestBuildUnevenDivision(t *testing.T) {
	// 10 minutes in 3-minute steps: last stepped sample (9m) < end, end appended.
	end := gridStart.Add(10 * time.Minute)
	grid, err := Build(gridStart, end, 3*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !grid[0].Equal(gridStart) {
		t.Errorf("first sample = %v, want start", grid[0])
	}
	if !grid[len(grid)-1].Equal(end) {
		t.Errorf("last sample = %v, want end", grid[len(grid)-1])
	}
	if len(grid) != 5 { // start, 3m, 6m, 9m, end
		t.Errorf("grid length = %d, want 5: %v", len(grid), grid)
	}
}

func TestBuildStepLargerThanRange(t *testing.T) {
	end := gridStart.Add(time.Minute)
	grid, err := Build(gridStart, end, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid) != 2 || !grid[0].Equal(gridStart) || !grid[1].Equal(end) {
		t.Errorf("grid = %v, want exactly [start, end]", grid)
	}
}

func TestBuildStrictlyIncreasing(t *testing.T) {
	tests := []struct {
		name string
		span time.Duration
		step time.Duration
	}{
		{"even", time.Hour, 5 * time.Minute},
		{"uneven", time.Hour, 7 * time.Minute},
		{"single step", 30 * time.Second, 30 * time.Second},
		{"sub-second", 2 * time.Second, 300 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end := gridStart.Add(tt.span)
			grid, err := Build(gridStart, end, tt.step)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !grid[0].Equal(gridStart) {
				t.Errorf("first sample = %v, want start", grid[0])
			}
			if !grid[len(grid)-1].Equal(end) {
				t.Errorf("last sample = %v, want end", grid[len(grid)-1])
			}
			for i := 1; i < len(grid); i++ {
				if !grid[i].After(grid[i-1]) {
					t.Errorf("grid not strictly increasing at %d: %v then %v", i, grid[i-1], grid[i])
				}
			}
		})
	}
}

func TestBuildValidation(t *testing.T) {
	end := gridStart.Add(time.Hour)

	if _, err := Build(gridStart, end, 0); !errors.Is(err, ErrNonPositiveStep) {
		t.Errorf("zero step: err = %v, want ErrNonPositiveStep", err)
	}
	if _, err := Build(gridStart, end, -time.Second); !errors.Is(err, ErrNonPositiveStep) {
		t.Errorf("negative step: err = %v, want ErrNonPositiveStep", err)
	}
	if _, err := Build(end, gridStart, time.Second); !errors.Is(err, ErrEmptyRange) {
		t.Errorf("reversed range: err = %v, want ErrEmptyRange", err)
	}
	if _, err := Build(gridStart, gridStart, time.Second); !errors.Is(err, ErrEmptyRange) {
		t.Errorf("empty range: err = %v, want ErrEmptyRange", err)
	}
}
