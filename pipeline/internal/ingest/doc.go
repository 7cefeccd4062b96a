// Package ingest loads raw machine telemetry from a CSV file into a sorted,
// time-indexed series.
//
// Load validates the required columns up front and fails fast — a missing
// input file or a missing required column aborts before any row is processed,
// so a partial run can never produce a partial artifact downstream.
//
// The returned series is sorted by timestamp ascending (stable, so rows that
// share a timestamp keep their file order). All downstream windowed
// computation relies on that ordering.
package ingest
