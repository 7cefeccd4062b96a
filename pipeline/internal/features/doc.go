// Package features computes leakage-safe rolling window aggregates over a
// sorted telemetry series.
//
// For each record at time t, the mean and max of the core metric are taken
// over all records with t-W ≤ timestamp < t. The half-open boundary on the
// right excludes the record's own sample — a feature at t must only use
// information known strictly before t. The window is a duration, not a row
// count, so the aggregates stay correct under irregular sampling.
//
// Cold start: a record with no prior sample inside the window gets 0 for both
// aggregates. That is a deliberate simplification carried over from the
// historical dataset format, not a statistically neutral choice.
package features
