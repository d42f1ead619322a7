package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/star/skywatch/internal/catalog"
	"github.com/star/skywatch/internal/metrics"
	"github.com/star/skywatch/internal/survey"
	"github.com/star/skywatch/internal/timegrid"
	"github.com/star/skywatch/internal/tle"
	"github.com/star/skywatch/internal/transit"
)

const defaultSourceURL = "https://celestrak.org/NORAD/elements/gp.php?GROUP=active&FORMAT=tle"

type runConfig struct {
	opts          catalog.Options
	obsConfigPath string
	tleCacheDir   string
	minAltitude   float64
	sampleStep    time.Duration
	metricsAddr   string
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := loadRunConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			logger.Info("serving metrics", "addr", cfg.metricsAddr)
			if err := http.ListenAndServe(cfg.metricsAddr, mux); err != nil {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
	}

	loader := tle.NewLoader(cfg.tleCacheDir, 0, nil, logger)

	cat, err := catalog.New(ctx, cfg.opts, loader, cfg.obsConfigPath, logger)
	if err != nil {
		logger.Error("catalog construction failed", "error", err)
		os.Exit(1)
	}

	items := make([]catalog.WorkItem, 0, cat.Len())
	for item := range cat.All() {
		items = append(items, item)
	}

	results := survey.Run(ctx, survey.Request{
		Items:       items,
		MinAltitude: cfg.minAltitude,
	}, logger)

	total := 0
	for _, res := range results {
		if res.Err != nil {
			logger.Warn("work item failed",
				"observatory", res.Item.Pair.Observatory.Name,
				"object", res.Item.Pair.Sat.Name,
				"error", res.Err,
			)
			continue
		}
		for _, tr := range res.Transits {
			total++
			printTransit(tr, cfg.sampleStep, logger)
		}
	}

	fmt.Printf("\n%d transits across %d work items (min altitude %.1f deg, %s to %s)\n",
		total, len(items), cfg.minAltitude,
		cat.Start.Format(time.RFC3339), cat.End.Format(time.RFC3339))
}

func printTransit(tr *transit.Transit, sampleStep time.Duration, logger *slog.Logger) {
	end := "still up at window end"
	if tr.Closed() {
		end = fmt.Sprintf("%s (duration %s)", tr.End.Format(time.RFC3339), tr.Duration().Round(time.Second))
	}
	fmt.Printf("%s over %s: %s -> %s, %d culminations\n",
		tr.Pair.Sat.Name, tr.Pair.Observatory.Name,
		tr.Start.Format(time.RFC3339), end, len(tr.Culminations))

	if sampleStep <= 0 || !tr.Closed() {
		return
	}

	grid, err := timegrid.Build(tr.Start, tr.End, sampleStep)
	if err != nil {
		logger.Warn("skipping track table", "error", err)
		return
	}
	points, err := tr.Pair.Sample(grid)
	if err != nil {
		logger.Warn("skipping track table", "error", err)
		return
	}

	fmt.Printf("  %-20s %9s %9s %8s %8s %9s %9s\n",
		"time", "ra", "dec", "alt", "az", "sub_lat", "sub_long")
	for _, p := range points {
		fmt.Printf("  %-20s %9.4f %9.4f %8.3f %8.3f %9.4f %9.4f\n",
			p.Time.Format("2006-01-02T15:04:05Z"),
			p.RADeg, p.DecDeg, p.AltDeg, p.AzDeg, p.SubLatDeg, p.SubLonDeg)
	}
}

func loadRunConfig(logger *slog.Logger) runConfig {
	cfg := runConfig{
		opts: catalog.Options{
			StartDate:   os.Getenv("SKYWATCH_START_DATE"),
			HorizonDays: 1,
			Sources:     []string{defaultSourceURL},
			Cache:       true,
		},
		obsConfigPath: "config/obs_data.yaml",
		tleCacheDir:   "/tmp/skywatch/tle",
		minAltitude:   30,
	}

	if v := os.Getenv("SKYWATCH_HORIZON_DAYS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			logger.Warn("invalid SKYWATCH_HORIZON_DAYS value, using default", "value", v, "default", cfg.opts.HorizonDays)
		} else {
			cfg.opts.HorizonDays = f
		}
	}

	if v := os.Getenv("SKYWATCH_SOURCES"); v != "" {
		var sources []string
		for _, s := range strings.Split(v, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				sources = append(sources, s)
			}
		}
		if len(sources) > 0 {
			cfg.opts.Sources = sources
		}
	}

	for _, flag := range []struct {
		env string
		dst *bool
	}{
		{"SKYWATCH_CHAIN", &cfg.opts.Chain},
		{"SKYWATCH_RELOAD", &cfg.opts.Reload},
		{"SKYWATCH_CACHE", &cfg.opts.Cache},
		{"SKYWATCH_USE_ALL", &cfg.opts.UseAll},
		{"SKYWATCH_IGNORE_LIMIT", &cfg.opts.IgnoreLimit},
	} {
		if v := os.Getenv(flag.env); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				logger.Warn("invalid boolean value, using default", "var", flag.env, "value", v)
			} else {
				*flag.dst = b
			}
		}
	}

	if v := os.Getenv("SKYWATCH_MIN_ALTITUDE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f >= 90 {
			logger.Warn("invalid SKYWATCH_MIN_ALTITUDE value, using default", "value", v, "default", cfg.minAltitude)
		} else {
			cfg.minAltitude = f
		}
	}

	if v := os.Getenv("SKYWATCH_SAMPLE_STEP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SKYWATCH_SAMPLE_STEP value, track tables disabled", "value", v)
		} else {
			cfg.sampleStep = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("SKYWATCH_OBS_CONFIG"); v != "" {
		cfg.obsConfigPath = v
	}

	if v := os.Getenv("SKYWATCH_TLE_CACHE_DIR"); v != "" {
		cfg.tleCacheDir = v
	}

	cfg.metricsAddr = os.Getenv("SKYWATCH_METRICS_ADDR")

	logger.Info("run config",
		"start_date", cfg.opts.StartDate,
		"horizon_days", cfg.opts.HorizonDays,
		"sources", cfg.opts.Sources,
		"chain", cfg.opts.Chain,
		"min_altitude", cfg.minAltitude,
		"obs_config", cfg.obsConfigPath,
	)

	return cfg
}
