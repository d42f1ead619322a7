// Package catalog enumerates the (time window, observatory, object) work
// items a transit survey evaluates.
//
// Construction loads tracked objects from the configured sources,
// deduplicates them by (name, epoch), loads the observatory list, and lays
// the objects out into evaluation slots — either one full-horizon slot per
// object, or, in chain mode, back-to-back windows tiling the horizon across
// an object's successive element-set epochs. Iteration lazily yields the
// slot × observatory cross product.
package catalog

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sort"
	"time"

	"github.com/star/skywatch/internal/ephemeris"
	"github.com/star/skywatch/internal/metrics"
	"github.com/star/skywatch/internal/observatory"
	"github.com/star/skywatch/internal/tle"
)

// startDateLayout is the only accepted start-date format.
const startDateLayout = "2006-01-02"

// Options control catalog construction.
type Options struct {
	// StartDate in "2006-01-02" form. Anything unparseable — including an
	// empty string — silently degrades to the start of the current day UTC.
	StartDate string

	// HorizonDays is the evaluation horizon from the effective start.
	HorizonDays float64

	// Sources are the object-source references handed to the loader.
	Sources []string

	// Chain stitches successive epochs of the same named object into
	// consecutive evaluation windows instead of one window per record.
	Chain bool

	// Loader flags, passed through per source.
	Reload      bool
	Cache       bool
	UseAll      bool
	IgnoreLimit bool
}

// ObjectLoader supplies tracked objects for one source reference.
// Implementations must be idempotent for identical arguments when the
// cache flag is set. *tle.Loader is the production implementation.
type ObjectLoader interface {
	Load(ctx context.Context, opts tle.LoadOptions, start time.Time, sourceRef string) ([]tle.TLEEntry, error)
}

// WorkItem is one unit of evaluation: find transits of Pair over the window
// starting at Start and running for Days days.
type WorkItem struct {
	Start time.Time
	Days  float64
	Pair  *ephemeris.Pair
}

// End returns the end of the work item's window.
func (w WorkItem) End() time.Time {
	return w.Start.Add(durationDays(w.Days))
}

// slot is one evaluation window for one object, before the cross product
// with observatories.
type slot struct {
	start time.Time
	days  float64
	sat   *ephemeris.Satellite
}

// Catalog is the materialized enumeration. Immutable once built.
type Catalog struct {
	Start time.Time
	End   time.Time

	slots         []slot
	observatories []observatory.Observatory
}

// New builds a catalog. A missing or malformed observatory configuration is
// fatal; a source yielding no objects is not. Objects whose element sets
// cannot initialize an orbital model are skipped with a warning so that
// every emitted work item carries a usable pair.
func New(ctx context.Context, opts Options, loader ObjectLoader, obsConfigPath string, logger *slog.Logger) (*Catalog, error) {
	start := resolveStart(opts.StartDate, logger)
	end := start.Add(durationDays(opts.HorizonDays))

	loadOpts := tle.LoadOptions{
		Reload:      opts.Reload,
		Cache:       opts.Cache,
		UseAll:      opts.UseAll,
		IgnoreLimit: opts.IgnoreLimit,
	}
	var entries []tle.TLEEntry
	for _, src := range opts.Sources {
		es, err := loader.Load(ctx, loadOpts, start, src)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		entries = append(entries, es...)
	}

	entries = dedupe(entries)

	sats := make([]*ephemeris.Satellite, 0, len(entries))
	for _, e := range entries {
		sat, err := ephemeris.NewSatellite(e)
		if err != nil {
			logger.Warn("skipping object with unusable element set",
				"name", e.Name, "norad_id", e.NORADID, "error", err)
			continue
		}
		sats = append(sats, sat)
	}

	observatories, err := observatory.Load(obsConfigPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	var slots []slot
	if opts.Chain {
		slots = chainSlots(sats, end, logger)
	} else {
		slots = make([]slot, 0, len(sats))
		for _, sat := range sats {
			slots = append(slots, slot{start: start, days: opts.HorizonDays, sat: sat})
		}
	}

	c := &Catalog{
		Start:         start,
		End:           end,
		slots:         slots,
		observatories: observatories,
	}

	metrics.SetCatalogSize(c.Len())
	logger.Info("catalog built",
		"objects", len(sats),
		"slots", len(slots),
		"observatories", len(observatories),
		"work_items", c.Len(),
		"start", start.Format(time.RFC3339),
		"end", end.Format(time.RFC3339),
		"chain", opts.Chain,
	)

	return c, nil
}

// Len returns the total number of work items: slots × observatories.
func (c *Catalog) Len() int {
	return len(c.slots) * len(c.observatories)
}

// All iterates the full cross product lazily, observatory-major: for the
// first observatory every slot is yielded, then the next observatory, and
// so on. The order is deterministic for the same inputs.
func (c *Catalog) All() iter.Seq[WorkItem] {
	return func(yield func(WorkItem) bool) {
		for _, obs := range c.observatories {
			for _, s := range c.slots {
				item := WorkItem{
					Start: s.start,
					Days:  s.days,
					Pair:  ephemeris.NewPair(obs, s.sat),
				}
				if !yield(item) {
					return
				}
			}
		}
	}
}

// resolveStart parses the caller-supplied date and truncates to the start
// of that UTC day. Parse failure is a documented degradation to today, not
// an error.
func resolveStart(startDate string, logger *slog.Logger) time.Time {
	parsed, err := time.ParseInLocation(startDateLayout, startDate, time.UTC)
	if err != nil {
		now := time.Now().UTC()
		if startDate != "" {
			logger.Warn("unparseable start date, using start of today",
				"start_date", startDate)
		}
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
}

// dedupe drops duplicate (name, epoch) records. The last record for a key
// wins; keys keep the position of their first appearance.
func dedupe(entries []tle.TLEEntry) []tle.TLEEntry {
	idx := make(map[string]int, len(entries))
	out := make([]tle.TLEEntry, 0, len(entries))
	for _, e := range entries {
		if i, ok := idx[e.Key()]; ok {
			out[i] = e
			continue
		}
		idx[e.Key()] = len(out)
		out = append(out, e)
	}
	return out
}

// chainSlots groups objects by name, orders each group by epoch, and lays
// the kept epochs out as adjoining windows: each epoch is evaluated until
// the next one takes over, the last until the horizon end. Epochs at or
// past the horizon end are discarded; a group with no surviving epoch
// contributes nothing.
func chainSlots(sats []*ephemeris.Satellite, end time.Time, logger *slog.Logger) []slot {
	names := make([]string, 0)
	groups := make(map[string][]*ephemeris.Satellite)
	for _, sat := range sats {
		if _, ok := groups[sat.Name]; !ok {
			names = append(names, sat.Name)
		}
		groups[sat.Name] = append(groups[sat.Name], sat)
	}

	var slots []slot
	for _, name := range names {
		group := groups[name]
		sort.Slice(group, func(i, j int) bool {
			return group[i].Epoch.Before(group[j].Epoch)
		})

		kept := group[:0:0]
		for _, sat := range group {
			if sat.Epoch.Before(end) {
				kept = append(kept, sat)
			}
		}
		if len(kept) == 0 {
			logger.Debug("every epoch past horizon end, skipping object", "name", name)
			continue
		}

		for i, sat := range kept {
			until := end
			if i+1 < len(kept) {
				until = kept[i+1].Epoch
			}
			slots = append(slots, slot{
				start: sat.Epoch,
				days:  until.Sub(sat.Epoch).Hours() / 24,
				sat:   sat,
			})
		}
	}

	return slots
}

// durationDays converts a fractional day count to a duration.
func durationDays(days float64) time.Duration {
	return time.Duration(days * float64(24*time.Hour))
}
