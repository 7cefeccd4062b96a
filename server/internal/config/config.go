package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort = 8080

	// DefaultBroadcastInterval is the monitoring stream push period.
	DefaultBroadcastInterval = 2 * time.Second

	DefaultRegistryPath = "runs.db"

	// DefaultRunID is the run identifier the server looks up at startup.
	// The literal is the historical single-model deployment default; point
	// it at a different run via server.model.run_id.
	DefaultRunID = "5482f4ad69d74181a86e9b5b1d2017cb"

	// DefaultInferenceTimeout bounds a single model invocation.
	DefaultInferenceTimeout = 2 * time.Second

	// DefaultFixedThreshold is the alert threshold for the fixed-schema
	// endpoint (alert when probability ≥ threshold).
	DefaultFixedThreshold = 0.5

	// DefaultFlexibleThreshold is the anomaly threshold for the
	// flexible-schema endpoint (anomaly when probability > threshold).
	// The two endpoints deliberately keep their historical, differing
	// defaults — do not unify them.
	DefaultFlexibleThreshold = 0.8

	// Confidence clamp bounds. Display-only heuristic; the exact values are
	// preserved for client compatibility.
	DefaultConfidenceFloor = 0.70
	DefaultConfidenceCeil  = 0.95
)

// Config holds the server-side configuration parsed from the `server:`
// section of config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all serving settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API, WebSocket stream and /metrics
	// listen on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// Broadcast controls the monitoring stream.
	Broadcast BroadcastConfig `yaml:"broadcast"`

	// Model controls predictor selection and loading.
	Model ModelConfig `yaml:"model"`

	// Predict holds the schema preset thresholds and the confidence clamp.
	Predict PredictConfig `yaml:"predict"`

	// Alerts holds rule definitions and webhook delivery targets.
	Alerts AlertsConfig `yaml:"alerts"`
}

// BroadcastConfig controls the WebSocket monitoring stream.
type BroadcastConfig struct {
	// Interval is the push period for monitoring snapshots (default 2s).
	Interval time.Duration `yaml:"interval"`
}

// ModelConfig controls predictor selection.
type ModelConfig struct {
	// RegistryPath is the bbolt run registry file (default runs.db).
	RegistryPath string `yaml:"registry_path"`

	// RunID is the registry key of the model to serve. A missing key is not
	// fatal — the server falls back to the synthetic predictor.
	RunID string `yaml:"run_id"`

	// WatchArtifact enables hot-reloading the trained model when its
	// artifact file changes on disk.
	WatchArtifact bool `yaml:"watch_artifact"`

	// InferenceTimeout bounds a single predictor invocation (default 2s).
	InferenceTimeout time.Duration `yaml:"inference_timeout"`
}

// PredictConfig holds the per-preset thresholds and the confidence clamp.
type PredictConfig struct {
	// FixedThreshold fires the fixed-schema alert at probability ≥ value.
	FixedThreshold float64 `yaml:"fixed_threshold"`

	// FlexibleThreshold fires the flexible-schema anomaly at
	// probability > value.
	FlexibleThreshold float64 `yaml:"flexible_threshold"`

	// ConfidenceFloor and ConfidenceCeil bound the displayed confidence.
	ConfidenceFloor float64 `yaml:"confidence_floor"`
	ConfidenceCeil  float64 `yaml:"confidence_ceil"`
}

// AlertsConfig holds alerting rules and webhook delivery targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines one threshold-based alert condition evaluated against
// each served prediction.
type AlertRule struct {
	// Name is the human-readable alert identifier, used as the
	// deduplication key.
	Name string `yaml:"name"`

	// Condition is a simple expression over prediction fields:
	// "failure_probability >= 0.9", "confidence < 0.75", "alert == true".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	// Defaults to 15 minutes if zero.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the config file at path, returning the server
// configuration. Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			Broadcast: BroadcastConfig{
				Interval: DefaultBroadcastInterval,
			},
			Model: ModelConfig{
				RegistryPath:     DefaultRegistryPath,
				RunID:            DefaultRunID,
				InferenceTimeout: DefaultInferenceTimeout,
			},
			Predict: PredictConfig{
				FixedThreshold:    DefaultFixedThreshold,
				FlexibleThreshold: DefaultFlexibleThreshold,
				ConfidenceFloor:   DefaultConfidenceFloor,
				ConfidenceCeil:    DefaultConfidenceCeil,
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	if s.Broadcast.Interval <= 0 {
		return fmt.Errorf("server.broadcast.interval must be positive, got %v", s.Broadcast.Interval)
	}
	if s.Model.RegistryPath == "" {
		return fmt.Errorf("server.model.registry_path must not be empty")
	}
	if s.Model.InferenceTimeout <= 0 {
		return fmt.Errorf("server.model.inference_timeout must be positive, got %v", s.Model.InferenceTimeout)
	}
	bounds := []struct {
		key string
		v   float64
	}{
		{"server.predict.fixed_threshold", s.Predict.FixedThreshold},
		{"server.predict.flexible_threshold", s.Predict.FlexibleThreshold},
		{"server.predict.confidence_floor", s.Predict.ConfidenceFloor},
		{"server.predict.confidence_ceil", s.Predict.ConfidenceCeil},
	}
	for _, b := range bounds {
		if b.v < 0 || b.v > 1 {
			return fmt.Errorf("%s %v is out of range [0, 1]", b.key, b.v)
		}
	}
	if s.Predict.ConfidenceFloor > s.Predict.ConfidenceCeil {
		return fmt.Errorf("server.predict.confidence_floor %v exceeds confidence_ceil %v",
			s.Predict.ConfidenceFloor, s.Predict.ConfidenceCeil)
	}
	return nil
}
