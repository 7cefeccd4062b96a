package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/failsense/failsense/pipeline/internal/config"
	"github.com/failsense/failsense/pipeline/internal/dataset"
	"github.com/failsense/failsense/pipeline/internal/features"
	"github.com/failsense/failsense/pipeline/internal/ingest"
	"github.com/failsense/failsense/pipeline/internal/labels"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("failsense-pipeline starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	p := cfg.Pipeline

	slog.Info("config loaded",
		"input", p.InputPath,
		"output", p.OutputPath,
		"rolling_window", p.RollingWindow,
		"lookahead_horizon", p.LookaheadHorizon,
	)

	series, err := ingest.Load(p.InputPath, ingest.Options{
		TimestampColumn: p.Columns.Timestamp,
		IndicatorColumn: p.Columns.FailureIndicator,
		MetricColumn:    p.Columns.CoreMetric,
	})
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrMissingInput):
			slog.Error("raw data file not found — create it before running the pipeline", "err", err)
		case errors.Is(err, ingest.ErrSchemaMismatch):
			slog.Error("raw data is missing a required column", "err", err)
		default:
			slog.Error("failed to load raw telemetry", "err", err)
		}
		os.Exit(1)
	}
	slog.Info("raw telemetry loaded", "rows", len(series.Records), "attrs", len(series.AttrColumns))

	feats := features.Build(series, p.RollingWindow)
	lbls := labels.Build(series, p.LookaheadHorizon)

	stats, err := dataset.Write(p.OutputPath, series, feats, lbls, p.RollingWindow)
	if err != nil {
		slog.Error("failed to write prepared dataset", "err", err)
		os.Exit(1)
	}

	slog.Info("prepared dataset written",
		"path", p.OutputPath,
		"rows", stats.Rows,
		"positives", stats.Positives,
		"columns", len(stats.Columns),
	)
}
