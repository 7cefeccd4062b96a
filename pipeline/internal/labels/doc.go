// Package labels derives the forward-looking "will_fail" target from a sorted
// telemetry series.
//
// A record at time t is labeled positive iff some record with timestamp
// strictly greater than t, and no more than the horizon ahead, carries the
// failure indicator. The record's own indicator value is never consulted —
// the label answers "is a failure coming", not "is this row a failure".
//
// An empty forward window (the tail of the series) resolves to a negative
// label rather than a missing value.
package labels
