package ephemeris

import (
	"context"
	"testing"
	"time"

	"github.com/star/skywatch/internal/observatory"
	"github.com/star/skywatch/internal/tle"
	"github.com/star/skywatch/internal/timegrid"
)

// Real ISS TLE (epoch Feb 2025, valid for testing pass geometry).
var issTLE = tle.TLEEntry{
	NORADID: 25544,
	Name:    "ISS (ZARYA)",
	Line1:   "1 25544U 98067A   25045.18032407  .00016717  00000+0  30099-3 0  9993",
	Line2:   "2 25544  51.6412 193.5765 0003457 126.2851 233.8519 15.49874301495058",
	Epoch:   time.Date(2025, 2, 14, 4, 19, 40, 0, time.UTC),
}

func issPair(t *testing.T) *Pair {
	t.Helper()
	sat, err := NewSatellite(issTLE)
	if err != nil {
		t.Fatalf("satellite init: %v", err)
	}
	obs, err := observatory.FromCoordinates("nyc", 40.7128, -74.006, 10)
	if err != nil {
		t.Fatalf("observatory: %v", err)
	}
	return NewPair(obs, sat)
}

func TestNewSatelliteRejectsMalformedTLE(t *testing.T) {
	tests := []struct {
		name  string
		entry tle.TLEEntry
	}{
		{"short line1", tle.TLEEntry{NORADID: 1, Line1: "1 truncated", Line2: issTLE.Line2}},
		{"short line2", tle.TLEEntry{NORADID: 1, Line1: issTLE.Line1, Line2: "2 truncated"}},
		{"wrong prefix", tle.TLEEntry{NORADID: 1, Line1: "9" + issTLE.Line1[1:], Line2: issTLE.Line2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSatellite(tt.entry); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestFindEventsISS(t *testing.T) {
	pair := issPair(t)
	start := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	events, err := pair.FindEvents(context.Background(), start, end, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// ISS in LEO passes over NYC several times a day.
	if len(events) == 0 {
		t.Fatal("expected at least one event over 24h")
	}

	// Chronological order.
	for i := 1; i < len(events); i++ {
		if events[i].Time.Before(events[i-1].Time) {
			t.Errorf("events out of order at %d: %v %v then %v %v",
				i, events[i-1].Flag, events[i-1].Time, events[i].Flag, events[i].Time)
		}
	}

	// Every event inside the queried window.
	for _, e := range events {
		if e.Time.Before(start) || !e.Time.Before(end) {
			t.Errorf("event %v %v outside window", e.Flag, e.Time)
		}
	}

	// Complete passes appear as rise, culminate, set runs.
	for i := 0; i+2 < len(events); i++ {
		if events[i].Flag == FlagRise && events[i+1].Flag == FlagCulminate && events[i+2].Flag == FlagSet {
			rise, culm, set := events[i].Time, events[i+1].Time, events[i+2].Time
			if !rise.Before(culm) || !culm.Before(set) {
				t.Errorf("pass ordering violated: rise=%v culminate=%v set=%v", rise, culm, set)
			}
		}
	}
}

func TestFindEventsCulminationIsMaximum(t *testing.T) {
	pair := issPair(t)
	start := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	events, err := pair.FindEvents(context.Background(), start, end, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, e := range events {
		if e.Flag != FlagCulminate {
			continue
		}
		altAt, err := pair.AltitudeAt(e.Time)
		if err != nil {
			t.Fatalf("altitude at culmination: %v", err)
		}
		before, err := pair.AltitudeAt(e.Time.Add(-30 * time.Second))
		if err != nil {
			t.Fatalf("altitude before culmination: %v", err)
		}
		after, err := pair.AltitudeAt(e.Time.Add(30 * time.Second))
		if err != nil {
			t.Fatalf("altitude after culmination: %v", err)
		}
		if altAt < before-0.1 || altAt < after-0.1 {
			t.Errorf("culmination at %v (%.2f deg) is not a local maximum (%.2f / %.2f)",
				e.Time, altAt, before, after)
		}
	}
}

func TestFindEventsHigherThresholdFewerEvents(t *testing.T) {
	pair := issPair(t)
	start := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	low, err := pair.FindEvents(context.Background(), start, end, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	high, err := pair.FindEvents(context.Background(), start, end, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(high) > len(low) {
		t.Errorf("60 deg threshold produced %d events, 0 deg produced %d", len(high), len(low))
	}
}

func TestFindEventsCancellation(t *testing.T) {
	pair := issPair(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
	_, err := pair.FindEvents(ctx, start, start.Add(24*time.Hour), 0)
	if err == nil {
		t.Fatal("expected context error, got nil")
	}
}

func TestSample(t *testing.T) {
	pair := issPair(t)
	start := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)

	grid, err := timegrid.Build(start, start.Add(10*time.Minute), time.Minute)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}

	points, err := pair.Sample(grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != len(grid) {
		t.Fatalf("got %d points for %d grid instants", len(points), len(grid))
	}

	for i, pt := range points {
		if !pt.Time.Equal(grid[i]) {
			t.Errorf("point %d time = %v, want %v", i, pt.Time, grid[i])
		}
		if pt.RADeg < 0 || pt.RADeg >= 360 {
			t.Errorf("point %d RA = %.4f out of [0,360)", i, pt.RADeg)
		}
		if pt.DecDeg < -90 || pt.DecDeg > 90 {
			t.Errorf("point %d Dec = %.4f out of [-90,90]", i, pt.DecDeg)
		}
		if pt.AzDeg < 0 || pt.AzDeg >= 360 {
			t.Errorf("point %d Az = %.4f out of [0,360)", i, pt.AzDeg)
		}
		if pt.AltDeg < -90 || pt.AltDeg > 90 {
			t.Errorf("point %d Alt = %.4f out of [-90,90]", i, pt.AltDeg)
		}
		if pt.SubLatDeg < -90 || pt.SubLatDeg > 90 {
			t.Errorf("point %d sub-latitude = %.4f out of range", i, pt.SubLatDeg)
		}
		// ISS inclination bounds the sub-satellite latitude.
		if pt.SubLatDeg < -52 || pt.SubLatDeg > 52 {
			t.Errorf("point %d sub-latitude = %.4f exceeds ISS inclination", i, pt.SubLatDeg)
		}
	}
}
