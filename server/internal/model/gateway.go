package model

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/failsense/failsense/server/internal/registry"
)

// Gateway owns the active predictor and its readiness state. It is the only
// mutable model state in the process: constructed once at startup, swapped
// only by the artifact watcher, read-only on the request path.
type Gateway struct {
	mu      sync.RWMutex
	p       Predictor
	trained bool
}

// NewGateway wraps an already-constructed predictor.
func NewGateway(p Predictor, trained bool) *Gateway {
	return &Gateway{p: p, trained: trained}
}

// Load performs the one-time predictor selection: look runID up in the run
// registry, load the referenced artifact, and fall back to the synthetic
// variant on any failure. Registry and load failures are logged, not
// propagated — they degrade, they do not abort startup.
func Load(reg *registry.Registry, runID string) (*Gateway, error) {
	rec, err := reg.Lookup(runID)
	if err != nil {
		if errors.Is(err, registry.ErrRunNotFound) {
			slog.Info("model: run not registered — using synthetic fallback", "run_id", runID)
		} else {
			slog.Error("model: registry lookup failed — using synthetic fallback",
				"run_id", runID, "err", err)
		}
		return NewGateway(NewSynthetic(), false), nil
	}

	tm, err := LoadArtifact(rec.ArtifactPath)
	if err != nil {
		slog.Error("model: artifact load failed — using synthetic fallback",
			"run_id", runID, "artifact", rec.ArtifactPath, "err", err)
		return NewGateway(NewSynthetic(), false), nil
	}

	slog.Info("model: trained model loaded",
		"run_id", runID,
		"model", tm.Name(),
		"columns", len(tm.Columns()),
	)
	return NewGateway(tm, true), nil
}

// Predict delegates to the active predictor.
func (g *Gateway) Predict(ctx context.Context, features []float64) (float64, error) {
	g.mu.RLock()
	p := g.p
	g.mu.RUnlock()
	return p.Predict(ctx, features)
}

// Columns returns the active predictor's expected column order. Empty for the
// synthetic variant.
func (g *Gateway) Columns() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.p.Columns()
}

// Trained reports whether a trained model (as opposed to the synthetic
// fallback) is active.
func (g *Gateway) Trained() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.trained
}

// ModelName returns the active predictor's name.
func (g *Gateway) ModelName() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.p.Name()
}

// Swap atomically replaces the active predictor. In-flight requests finish
// against the predictor they started with.
func (g *Gateway) Swap(p Predictor, trained bool) {
	g.mu.Lock()
	g.p = p
	g.trained = trained
	g.mu.Unlock()
}
