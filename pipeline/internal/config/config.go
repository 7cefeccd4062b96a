package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultInputPath  = "raw_system_logs.csv"
	DefaultOutputPath = "prepared_data.csv"

	DefaultTimestampColumn = "timestamp"
	DefaultIndicatorColumn = "is_failed"
	DefaultMetricColumn    = "sensor_A"

	// DefaultRollingWindow is the trailing duration over which the mean/max
	// features are aggregated.
	DefaultRollingWindow = 4 * time.Hour

	// DefaultLookaheadHorizon is how far ahead of each record a failure must
	// occur for the record to be labeled positive.
	DefaultLookaheadHorizon = 24 * time.Hour
)

// Config is the top-level pipeline configuration. The `server:` key in the
// same file is ignored.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// PipelineConfig holds all offline pipeline settings.
type PipelineConfig struct {
	// InputPath is the raw telemetry CSV to read.
	InputPath string `yaml:"input_path"`

	// OutputPath is where the prepared feature/label CSV is written.
	OutputPath string `yaml:"output_path"`

	// Columns names the required columns in the raw CSV.
	Columns ColumnsConfig `yaml:"columns"`

	// RollingWindow is the trailing feature-aggregation window.
	// The window and the horizon are independent; they need not be equal.
	RollingWindow time.Duration `yaml:"rolling_window"`

	// LookaheadHorizon is the forward failure-labeling window.
	LookaheadHorizon time.Duration `yaml:"lookahead_horizon"`
}

// ColumnsConfig names the required raw CSV columns.
type ColumnsConfig struct {
	// Timestamp is the time column. Values must parse as RFC3339 or
	// "2006-01-02 15:04:05".
	Timestamp string `yaml:"timestamp"`

	// FailureIndicator is the 0/1 failure column. It feeds the label only
	// and is excluded from the output artifact.
	FailureIndicator string `yaml:"failure_indicator"`

	// CoreMetric is the numeric column the rolling features are built from.
	CoreMetric string `yaml:"core_metric"`
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("pipeline config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			InputPath:  DefaultInputPath,
			OutputPath: DefaultOutputPath,
			Columns: ColumnsConfig{
				Timestamp:        DefaultTimestampColumn,
				FailureIndicator: DefaultIndicatorColumn,
				CoreMetric:       DefaultMetricColumn,
			},
			RollingWindow:    DefaultRollingWindow,
			LookaheadHorizon: DefaultLookaheadHorizon,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	p := cfg.Pipeline
	if p.InputPath == "" {
		return fmt.Errorf("pipeline.input_path must not be empty")
	}
	if p.OutputPath == "" {
		return fmt.Errorf("pipeline.output_path must not be empty")
	}
	if p.Columns.Timestamp == "" || p.Columns.FailureIndicator == "" || p.Columns.CoreMetric == "" {
		return fmt.Errorf("pipeline.columns: timestamp, failure_indicator and core_metric are all required")
	}
	if p.RollingWindow <= 0 {
		return fmt.Errorf("pipeline.rolling_window must be positive, got %v", p.RollingWindow)
	}
	if p.LookaheadHorizon <= 0 {
		return fmt.Errorf("pipeline.lookahead_horizon must be positive, got %v", p.LookaheadHorizon)
	}
	return nil
}
