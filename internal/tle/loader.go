package tle

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/star/skywatch/internal/metrics"
)

// defaultMaxEntries caps how many entries a single source may contribute
// unless the caller asks to ignore the limit.
const defaultMaxEntries = 500

// LoadOptions control how a source is loaded.
type LoadOptions struct {
	Reload      bool // bypass the disk cache and fetch fresh data
	Cache       bool // memoize the parsed result so identical calls are idempotent
	UseAll      bool // skip the locally-active filter
	IgnoreLimit bool // bypass the per-source entry cap
}

// ActiveFilter selects the locally relevant subset of a source's entries for
// a given evaluation start time. The loader treats the predicate as opaque.
type ActiveFilter func(entries []TLEEntry, start time.Time) []TLEEntry

// Loader retrieves tracked objects from remote TLE sources, with a disk
// cache for raw data and an in-memory memo for parsed results.
//
// With Cache set, two Load calls with identical arguments return the same
// entries without re-fetching or re-filtering.
type Loader struct {
	cacheDir   string
	maxFiles   int
	maxEntries int
	filter     ActiveFilter
	logger     *slog.Logger

	mu   sync.Mutex
	memo map[string][]TLEEntry
}

// NewLoader creates a Loader caching raw source data under cacheDir.
// A nil filter passes every entry through; maxEntries <= 0 uses the default cap.
func NewLoader(cacheDir string, maxEntries int, filter ActiveFilter, logger *slog.Logger) *Loader {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Loader{
		cacheDir:   cacheDir,
		maxFiles:   5,
		maxEntries: maxEntries,
		filter:     filter,
		logger:     logger,
		memo:       make(map[string][]TLEEntry),
	}
}

// Load returns the tracked objects of one source. Raw data comes from the
// newest disk-cache file unless Reload is set; a fetch result is written back
// to the disk cache for the next run.
func (l *Loader) Load(ctx context.Context, opts LoadOptions, start time.Time, sourceRef string) ([]TLEEntry, error) {
	key := memoKey(opts, start, sourceRef)
	if opts.Cache {
		l.mu.Lock()
		if entries, ok := l.memo[key]; ok {
			l.mu.Unlock()
			return entries, nil
		}
		l.mu.Unlock()
	}

	cache := NewCache(l.cacheDir, sourcePrefix(sourceRef), l.maxFiles)

	var data []byte
	loaded := false
	if !opts.Reload {
		if d, ts, err := cache.LoadLatest(); err == nil {
			data = d
			loaded = true
			l.logger.Info("loaded TLE data from disk cache",
				"source", sourceRef, "cached_at", ts.UTC().Format(time.RFC3339))
		}
	}

	if !loaded {
		fetcher := NewFetcher(sourceRef, l.logger)
		d, err := fetcher.Fetch(ctx)
		if err != nil {
			metrics.RecordSourceFetch(false)
			return nil, fmt.Errorf("loading source %s: %w", sourceRef, err)
		}
		metrics.RecordSourceFetch(true)
		data = d
		if err := cache.Write(data, time.Now().UTC()); err != nil {
			l.logger.Warn("failed to write TLE disk cache", "source", sourceRef, "error", err)
		}
	}

	entries, err := Parse(bytes.NewReader(data), l.logger)
	if err != nil {
		return nil, fmt.Errorf("parsing source %s: %w", sourceRef, err)
	}

	if !opts.UseAll && l.filter != nil {
		entries = l.filter(entries, start)
	}

	if !opts.IgnoreLimit && len(entries) > l.maxEntries {
		l.logger.Warn("truncating source to entry cap",
			"source", sourceRef, "entries", len(entries), "cap", l.maxEntries)
		entries = entries[:l.maxEntries]
	}

	l.logger.Debug("source loaded", "source", sourceRef, "entries", len(entries))

	if opts.Cache {
		l.mu.Lock()
		l.memo[key] = entries
		l.mu.Unlock()
	}

	return entries, nil
}

// memoKey covers every argument that can change a Load result.
func memoKey(opts LoadOptions, start time.Time, sourceRef string) string {
	return fmt.Sprintf("%s|%v|%v|%d", sourceRef, opts.UseAll, opts.IgnoreLimit, start.Unix())
}

// sourcePrefix derives a stable cache filename prefix from a source URL.
func sourcePrefix(sourceRef string) string {
	h := fnv.New32a()
	h.Write([]byte(sourceRef))
	return fmt.Sprintf("tle_%08x", h.Sum32())
}
