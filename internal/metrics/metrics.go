// Package metrics exposes Prometheus instrumentation for the transit engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sourceFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skywatch_source_fetches_total",
			Help: "Total number of TLE source fetch attempts.",
		},
		[]string{"result"},
	)

	transitsMatchedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skywatch_transits_matched_total",
			Help: "Total number of transits produced by the matcher.",
		},
	)

	unmatchedSetEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skywatch_unmatched_set_events_total",
			Help: "Total number of set events that closed no transit.",
		},
	)

	eventScanSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skywatch_event_scan_duration_seconds",
			Help:    "Duration of per-pair rise/culminate/set event scans.",
			Buckets: prometheus.DefBuckets,
		},
	)

	catalogWorkItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "skywatch_catalog_work_items",
			Help: "Number of work items in the current catalog.",
		},
	)
)

func init() {
	prometheus.MustRegister(sourceFetchesTotal)
	prometheus.MustRegister(transitsMatchedTotal)
	prometheus.MustRegister(unmatchedSetEventsTotal)
	prometheus.MustRegister(eventScanSeconds)
	prometheus.MustRegister(catalogWorkItems)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordSourceFetch counts one fetch attempt against a TLE source.
func RecordSourceFetch(ok bool) {
	result := "success"
	if !ok {
		result = "error"
	}
	sourceFetchesTotal.WithLabelValues(result).Inc()
}

// RecordMatch counts the transits produced and set events dropped by one
// matcher invocation.
func RecordMatch(transits, droppedSets int) {
	transitsMatchedTotal.Add(float64(transits))
	unmatchedSetEventsTotal.Add(float64(droppedSets))
}

// ObserveEventScan records the duration of one per-pair event scan.
func ObserveEventScan(d time.Duration) {
	eventScanSeconds.Observe(d.Seconds())
}

// SetCatalogSize records the work-item count of a freshly built catalog.
func SetCatalogSize(n int) {
	catalogWorkItems.Set(float64(n))
}
