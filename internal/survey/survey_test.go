package survey

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/star/skywatch/internal/catalog"
	"github.com/star/skywatch/internal/ephemeris"
	"github.com/star/skywatch/internal/observatory"
	"github.com/star/skywatch/internal/tle"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

var issTLE = tle.TLEEntry{
	NORADID: 25544,
	Name:    "ISS (ZARYA)",
	Line1:   "1 25544U 98067A   25045.18032407  .00016717  00000+0  30099-3 0  9993",
	Line2:   "2 25544  51.6412 193.5765 0003457 126.2851 233.8519 15.49874301495058",
	Epoch:   time.Date(2025, 2, 14, 4, 19, 40, 0, time.UTC),
}

func issItems(t *testing.T, n int) []catalog.WorkItem {
	t.Helper()
	start := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)

	items := make([]catalog.WorkItem, 0, n)
	for i := 0; i < n; i++ {
		sat, err := ephemeris.NewSatellite(issTLE)
		if err != nil {
			t.Fatalf("satellite init: %v", err)
		}
		obs, err := observatory.FromCoordinates("nyc", 40.7128, -74.006, 10)
		if err != nil {
			t.Fatalf("observatory: %v", err)
		}
		items = append(items, catalog.WorkItem{
			Start: start,
			Days:  1,
			Pair:  ephemeris.NewPair(obs, sat),
		})
	}
	return items
}

func TestRunFindsTransits(t *testing.T) {
	items := issItems(t, 1)

	results := Run(context.Background(), Request{Items: items, MinAltitude: 0}, testLogger)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	res := results[0]
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	// ISS passes over NYC several times a day.
	if len(res.Transits) == 0 {
		t.Fatal("expected at least one transit over 24h")
	}

	for i, tr := range res.Transits {
		if tr.Start.IsZero() {
			t.Errorf("transit %d has no start", i)
		}
		if tr.Pair != items[0].Pair {
			t.Errorf("transit %d not bound to its pair", i)
		}
		if tr.MinAltitude != 0 {
			t.Errorf("transit %d threshold = %v, want 0", i, tr.MinAltitude)
		}
		if !tr.Closed() {
			continue
		}
		if !tr.Start.Before(tr.End) {
			t.Errorf("transit %d: start %v not before end %v", i, tr.Start, tr.End)
		}
		for _, c := range tr.Culminations {
			if !c.After(tr.Start) || !c.Before(tr.End) {
				t.Errorf("transit %d: culmination %v outside (%v, %v)", i, c, tr.Start, tr.End)
			}
		}
	}
}

func TestRunPreservesItemOrder(t *testing.T) {
	items := issItems(t, 4)

	results := Run(context.Background(), Request{Items: items, MinAltitude: 0, Workers: 2}, testLogger)
	if len(results) != len(items) {
		t.Fatalf("got %d results, want %d", len(results), len(items))
	}
	for i := range results {
		if results[i].Item.Pair != items[i].Pair {
			t.Errorf("result %d does not correspond to item %d", i, i)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	items := issItems(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, Request{Items: items, MinAltitude: 0}, testLogger)
	for i, res := range results {
		if res.Err == nil && len(res.Transits) > 0 {
			t.Errorf("result %d completed a full search despite cancelled context", i)
		}
	}
}

func TestRunEmpty(t *testing.T) {
	results := Run(context.Background(), Request{MinAltitude: 30}, testLogger)
	if len(results) != 0 {
		t.Errorf("got %d results for empty request, want 0", len(results))
	}
}
