package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/failsense/failsense/server/internal/alerts"
	"github.com/failsense/failsense/server/internal/api"
	"github.com/failsense/failsense/server/internal/config"
	"github.com/failsense/failsense/server/internal/metrics"
	"github.com/failsense/failsense/server/internal/model"
	"github.com/failsense/failsense/server/internal/predict"
	"github.com/failsense/failsense/server/internal/registry"
	"github.com/failsense/failsense/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("failsense-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	srv := cfg.Server

	slog.Info("config loaded",
		"http_port", srv.HTTPPort,
		"registry", srv.Model.RegistryPath,
		"run_id", srv.Model.RunID,
		"broadcast_interval", srv.Broadcast.Interval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Run registry — opened once, shared by the model loader and the status
	// endpoints.
	reg, err := registry.Open(srv.Model.RegistryPath)
	if err != nil {
		slog.Error("failed to open run registry", "path", srv.Model.RegistryPath, "err", err)
		os.Exit(1)
	}
	defer reg.Close()

	// One-time predictor selection. A missing run or broken artifact
	// degrades to the synthetic fallback; it never aborts startup.
	gw, err := model.Load(reg, srv.Model.RunID)
	if err != nil {
		slog.Error("no predictor available", "err", err)
		os.Exit(1)
	}
	slog.Info("predictor ready", "model", gw.ModelName(), "trained", gw.Trained())

	// Optional hot reload of the trained artifact.
	if srv.Model.WatchArtifact {
		if rec, err := reg.Lookup(srv.Model.RunID); err == nil {
			go func() {
				if err := model.Watch(ctx, rec.ArtifactPath, gw); err != nil {
					slog.Error("artifact watcher stopped", "err", err)
				}
			}()
		} else {
			slog.Warn("watch_artifact enabled but run is not registered — watcher disabled",
				"run_id", srv.Model.RunID)
		}
	}

	// Prometheus collectors + the tracker feeding the monitoring stream.
	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)
	tracker := metrics.NewTracker()

	// Alert engine — evaluates rules on every served prediction.
	alertEngine := alerts.New(srv.Alerts)

	opts := predict.Options{
		ConfidenceFloor:  srv.Predict.ConfidenceFloor,
		ConfidenceCeil:   srv.Predict.ConfidenceCeil,
		InferenceTimeout: srv.Model.InferenceTimeout,
		Tracker:          tracker,
		Metrics:          m,
	}
	fixedSvc := predict.New(gw, predict.Fixed(srv.Predict.FixedThreshold), opts)
	flexSvc := predict.New(gw, predict.Flexible(srv.Predict.FlexibleThreshold), opts)

	// WebSocket hub — broadcasts monitoring snapshots every interval.
	hub := ws.New(tracker, m, srv.Broadcast.Interval)
	go hub.Run(ctx)

	httpMux := http.NewServeMux()
	httpMux.Handle("/", api.New(fixedSvc, flexSvc, gw, reg, alertEngine))
	httpMux.Handle("/ws", hub)
	httpMux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", srv.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", srv.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("failsense-server shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
