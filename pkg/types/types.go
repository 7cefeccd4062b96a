package types

import "time"

// TelemetryRecord is one raw telemetry sample. Records are immutable once
// ingested; the pipeline never mutates them after the initial sort.
type TelemetryRecord struct {
	// Timestamp is the sample time. The ingestor guarantees the record
	// sequence is sorted by Timestamp ascending before any windowed
	// computation runs.
	Timestamp time.Time

	// Metric is the value of the configured core metric column.
	Metric float64

	// Failed is the raw failure indicator. It is a label source, not a
	// feature — the dataset writer drops it from the final artifact.
	Failed bool

	// Attrs holds the remaining numeric columns of the raw row, keyed by
	// column name. Passed through to the output artifact unchanged.
	Attrs map[string]float64
}

// FeatureRecord holds the leakage-safe rolling aggregates derived for one
// TelemetryRecord. The feature builder produces exactly one FeatureRecord per
// input record, in input order.
type FeatureRecord struct {
	Timestamp time.Time

	// Mean is the rolling mean of the core metric over the trailing window,
	// excluding the record's own timestamp. 0 when no prior record falls in
	// the window.
	Mean float64

	// Max is the rolling max over the same window, with the same cold-start
	// default.
	Max float64
}
