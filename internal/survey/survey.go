// Package survey runs the transit search across catalog work items.
package survey

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/star/skywatch/internal/catalog"
	"github.com/star/skywatch/internal/metrics"
	"github.com/star/skywatch/internal/transit"
)

// Request holds the parameters for one survey run.
type Request struct {
	Items       []catalog.WorkItem
	MinAltitude float64 // degrees
	Workers     int     // 0 means one per CPU
}

// Result is the outcome for one work item. Results are returned in the
// order of the request's items regardless of completion order.
type Result struct {
	Item     catalog.WorkItem
	Transits []*transit.Transit
	Err      error
}

// Run finds transits for every work item. Items are processed concurrently,
// bounded by a semaphore; each goroutine owns its item's pair exclusively,
// so no synchronization around the propagator is needed.
func Run(ctx context.Context, req Request, logger *slog.Logger) []Result {
	workers := req.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(req.Items))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, item := range req.Items {
		wg.Add(1)
		go func(idx int, it catalog.WorkItem) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = Result{Item: it, Err: ctx.Err()}
				return
			}

			results[idx] = search(ctx, it, req.MinAltitude, logger)
		}(i, item)
	}

	wg.Wait()
	return results
}

// search scans one work item's window for events and matches them into
// transits.
func search(ctx context.Context, item catalog.WorkItem, minAlt float64, logger *slog.Logger) Result {
	scanStart := time.Now()
	events, err := item.Pair.FindEvents(ctx, item.Start, item.End(), minAlt)
	metrics.ObserveEventScan(time.Since(scanStart))
	if err != nil {
		return Result{Item: item, Err: err}
	}

	res := transit.Match(events, item.Pair, minAlt)
	metrics.RecordMatch(len(res.Transits), res.UnmatchedSets)

	logger.Debug("work item searched",
		"observatory", item.Pair.Observatory.Name,
		"object", item.Pair.Sat.Name,
		"events", len(events),
		"transits", len(res.Transits),
		"unmatched_sets", res.UnmatchedSets,
	)

	return Result{Item: item, Transits: res.Transits}
}
