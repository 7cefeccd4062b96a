// Package types defines shared Go types used by both the offline pipeline and
// the serving process. These are the canonical in-memory representations of
// machine telemetry, separate from the CSV and JSON wire formats.
package types
