package predict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/failsense/failsense/server/internal/metrics"
	"github.com/failsense/failsense/server/internal/model"
)

// Validation errors. Both reject the request before the gateway is invoked.
var (
	ErrNoFeatures   = errors.New("predict: no features provided")
	ErrMissingField = errors.New("predict: required feature missing")
)

// Status values carried by Result.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// FixedColumns is the declared feature order of the fixed-schema preset.
// The order matters: it must match the order the model was trained with.
var FixedColumns = []string{"sensor_A", "error_count", "sensor_A_mean_4h", "sensor_A_max_4h"}

// Schema is a named request-shape preset.
type Schema struct {
	// Name labels the preset in metrics and logs.
	Name string

	// Columns is the declared feature order. Nil means positional: columns
	// are derived from the request's own field order.
	Columns []string

	// Threshold is the alert/anomaly probability threshold.
	Threshold float64

	// StrictGreater selects p > Threshold (flexible preset) instead of
	// p ≥ Threshold (fixed preset).
	StrictGreater bool
}

// Flexible returns the positional-schema preset with the given anomaly
// threshold (historically 0.8, strict greater-than).
func Flexible(threshold float64) Schema {
	return Schema{Name: "flexible", Threshold: threshold, StrictGreater: true}
}

// Fixed returns the declared-schema preset with the given alert threshold
// (historically 0.5, greater-or-equal).
func Fixed(threshold float64) Schema {
	return Schema{Name: "fixed", Columns: FixedColumns, Threshold: threshold}
}

// Request is a decoded prediction request. Values maps feature name to value;
// Order preserves the request's own field order for positional schemas.
type Request struct {
	Values map[string]float64
	Order  []string
}

// Result is the structured outcome of one prediction.
type Result struct {
	Status       string
	Err          string // set when Status == StatusError
	Probability  float64
	Confidence   float64
	Alert        bool
	FeaturesUsed int
	Timestamp    time.Time
}

// Options holds the service knobs shared by both presets.
type Options struct {
	// ConfidenceFloor and ConfidenceCeil bound the displayed confidence.
	ConfidenceFloor float64
	ConfidenceCeil  float64

	// InferenceTimeout bounds a single gateway invocation.
	InferenceTimeout time.Duration

	// Tracker and Metrics are optional; nil disables instrumentation.
	Tracker *metrics.Tracker
	Metrics *metrics.Metrics
}

// Service handles prediction requests for one schema preset. Multiple
// services may share a gateway; the gateway is read-only on this path.
type Service struct {
	gw      *model.Gateway
	schema  Schema
	opts    Options
	now     func() time.Time // injectable for deterministic tests
}

// New creates a Service for the given gateway and schema preset.
func New(gw *model.Gateway, schema Schema, opts Options) *Service {
	if opts.InferenceTimeout <= 0 {
		opts.InferenceTimeout = 2 * time.Second
	}
	return &Service{gw: gw, schema: schema, opts: opts, now: time.Now}
}

// Schema returns the service's preset.
func (s *Service) Schema() Schema {
	return s.schema
}

// Predict validates req, assembles the canonical feature vector, invokes the
// gateway and derives the confidence and alert fields.
//
// A non-nil error is a request-validation failure — the gateway was never
// invoked and the caller should reject the request. An inference failure is
// reported inside the Result (Status == StatusError); the service stays up.
func (s *Service) Predict(ctx context.Context, req Request) (Result, error) {
	start := s.now()

	if err := s.validate(req); err != nil {
		s.count("rejected")
		return Result{}, err
	}

	// Canonical column order: the model's expected columns when it declares
	// any, otherwise the schema's. Reindexing fills missing columns with 0
	// and drops extras — always, regardless of the active variant.
	cols := s.schema.Columns
	if cols == nil {
		cols = req.Order
	}
	if expected := s.gw.Columns(); len(expected) > 0 {
		cols = expected
	}
	vec := model.Reindex(req.Values, cols)

	ictx, cancel := context.WithTimeout(ctx, s.opts.InferenceTimeout)
	defer cancel()

	p, err := s.gw.Predict(ictx, vec)
	elapsed := s.now().Sub(start)

	if err != nil {
		slog.Error("predict: inference failed", "schema", s.schema.Name, "err", err)
		s.count(StatusError)
		return Result{
			Status:    StatusError,
			Err:       err.Error(),
			Timestamp: s.now(),
		}, nil
	}

	conf := clamp(p, s.opts.ConfidenceFloor, s.opts.ConfidenceCeil)
	alert := p >= s.schema.Threshold
	if s.schema.StrictGreater {
		alert = p > s.schema.Threshold
	}

	s.observe(elapsed, conf, alert)

	return Result{
		Status:       StatusSuccess,
		Probability:  p,
		Confidence:   conf,
		Alert:        alert,
		FeaturesUsed: len(req.Values),
		Timestamp:    s.now(),
	}, nil
}

// validate enforces the preset's request contract.
func (s *Service) validate(req Request) error {
	if s.schema.Columns == nil {
		if len(req.Order) == 0 {
			return ErrNoFeatures
		}
		return nil
	}
	for _, name := range s.schema.Columns {
		if _, ok := req.Values[name]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}
	return nil
}

func (s *Service) count(status string) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.PredictionsTotal.WithLabelValues(s.schema.Name, status).Inc()
	}
}

func (s *Service) observe(elapsed time.Duration, conf float64, alert bool) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.PredictionsTotal.WithLabelValues(s.schema.Name, StatusSuccess).Inc()
		s.opts.Metrics.PredictionSeconds.Observe(elapsed.Seconds())
		if alert {
			s.opts.Metrics.AnomaliesTotal.Inc()
		}
	}
	if s.opts.Tracker != nil {
		s.opts.Tracker.Observe(elapsed, conf, alert)
	}
}

// clamp bounds p to [floor, ceil]. Monotone in p, so the derived confidence
// never decreases as the probability increases.
func clamp(p, floor, ceil float64) float64 {
	if p < floor {
		return floor
	}
	if p > ceil {
		return ceil
	}
	return p
}
