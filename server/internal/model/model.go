package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sync"
	"time"
)

// ErrModelUnavailable means neither predictor variant could be constructed.
// The synthetic variant always succeeds, so this only surfaces if fallback is
// explicitly disabled. Fatal at startup only, never per request.
var ErrModelUnavailable = errors.New("model: no predictor available")

// Predictor is the capability exposed to the prediction service: one feature
// vector in, one failure probability in [0, 1] out.
type Predictor interface {
	// Predict scores a feature vector already reindexed to Columns order.
	Predict(ctx context.Context, features []float64) (float64, error)

	// Columns is the expected feature column order. Empty means the
	// predictor accepts any vector as-is (the synthetic variant).
	Columns() []string

	// Name identifies the variant for status endpoints and logs.
	Name() string
}

// Artifact is the on-disk trained model format: a logistic scorer with named
// coefficients, written by the training collaborator.
type Artifact struct {
	Name    string    `json:"name"`
	Version string    `json:"version"`
	Columns []string  `json:"columns"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// TrainedModel scores feature vectors with logistic regression coefficients
// loaded from an artifact file. Read-only after construction.
type TrainedModel struct {
	art Artifact
}

// LoadArtifact reads and validates a trained model artifact.
func LoadArtifact(path string) (*TrainedModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read artifact %q: %w", path, err)
	}
	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("model: parse artifact %q: %w", path, err)
	}
	if len(art.Columns) == 0 {
		return nil, fmt.Errorf("model: artifact %q declares no columns", path)
	}
	if len(art.Weights) != len(art.Columns) {
		return nil, fmt.Errorf("model: artifact %q has %d weights for %d columns",
			path, len(art.Weights), len(art.Columns))
	}
	return &TrainedModel{art: art}, nil
}

// Predict returns sigmoid(bias + w·x).
func (m *TrainedModel) Predict(ctx context.Context, features []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("model: inference cancelled: %w", err)
	}
	if len(features) != len(m.art.Weights) {
		return 0, fmt.Errorf("model: got %d features, want %d", len(features), len(m.art.Weights))
	}
	z := m.art.Bias
	for i, w := range m.art.Weights {
		z += w * features[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}

// Columns returns the trained feature column order.
func (m *TrainedModel) Columns() []string {
	return m.art.Columns
}

// Name returns "<name>:<version>".
func (m *TrainedModel) Name() string {
	return m.art.Name + ":" + m.art.Version
}

// SyntheticModel produces pseudo-random probabilities. It stands in for a
// trained model during demos and whenever no artifact can be loaded, and can
// always be constructed.
type SyntheticModel struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthetic returns a SyntheticModel seeded from the wall clock.
func NewSynthetic() *SyntheticModel {
	return NewSyntheticSeeded(time.Now().UnixNano())
}

// NewSyntheticSeeded returns a SyntheticModel with a fixed seed, for tests.
func NewSyntheticSeeded(seed int64) *SyntheticModel {
	return &SyntheticModel{rng: rand.New(rand.NewSource(seed))}
}

// Predict ignores the feature vector and returns a uniform draw from [0, 1).
func (s *SyntheticModel) Predict(ctx context.Context, features []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("model: inference cancelled: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64(), nil
}

// Columns returns nil — the synthetic variant accepts any vector.
func (s *SyntheticModel) Columns() []string {
	return nil
}

// Name identifies the fallback variant.
func (s *SyntheticModel) Name() string {
	return "synthetic"
}

// Reindex maps named feature values onto the expected column order. Columns
// absent from values are filled with 0; names not in columns are dropped.
func Reindex(values map[string]float64, columns []string) []float64 {
	out := make([]float64, len(columns))
	for i, name := range columns {
		out[i] = values[name]
	}
	return out
}
