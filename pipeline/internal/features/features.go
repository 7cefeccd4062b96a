package features

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/failsense/failsense/pipeline/internal/ingest"
	"github.com/failsense/failsense/pkg/types"
)

// Build computes the rolling mean and max of the core metric for every record
// in the series. Output length and order match the input exactly.
//
// The series must already be sorted by timestamp ascending (ingest.Load
// guarantees this). Both boundary pointers only move forward, so the whole
// pass is linear plus the per-window aggregation cost.
func Build(s *ingest.Series, window time.Duration) []types.FeatureRecord {
	out := make([]types.FeatureRecord, len(s.Records))

	var vals []float64
	lo, hi := 0, 0
	for i, rec := range s.Records {
		t := rec.Timestamp

		// lo: first index with timestamp ≥ t-W (left edge, closed).
		for lo < len(s.Records) && s.Records[lo].Timestamp.Before(t.Add(-window)) {
			lo++
		}
		// hi: first index with timestamp ≥ t (right edge, open — never
		// includes t itself, even when earlier rows share the timestamp).
		for hi < len(s.Records) && s.Records[hi].Timestamp.Before(t) {
			hi++
		}

		vals = vals[:0]
		for j := lo; j < hi; j++ {
			vals = append(vals, s.Records[j].Metric)
		}

		fr := types.FeatureRecord{Timestamp: t}
		if len(vals) > 0 {
			fr.Mean = stat.Mean(vals, nil)
			fr.Max = floats.Max(vals)
		}
		out[i] = fr
	}

	return out
}

// MeanColumn returns the output column name for the rolling mean feature,
// e.g. "sensor_A_mean_4h".
func MeanColumn(metric string, window time.Duration) string {
	return fmt.Sprintf("%s_mean_%s", metric, windowSuffix(window))
}

// MaxColumn returns the output column name for the rolling max feature,
// e.g. "sensor_A_max_4h".
func MaxColumn(metric string, window time.Duration) string {
	return fmt.Sprintf("%s_max_%s", metric, windowSuffix(window))
}

// windowSuffix renders a whole-hour window as "4h" for compatibility with the
// historical column names; anything else falls back to Duration formatting.
func windowSuffix(window time.Duration) string {
	if window%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(window.Hours()))
	}
	return window.String()
}
