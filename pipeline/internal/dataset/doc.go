// Package dataset joins the engineered features and the forward-looking label
// into the prepared training artifact and writes it as CSV.
//
// The output keeps the timestamp index, the core metric, every passthrough
// attribute, the two rolling feature columns and the will_fail label. The raw
// failure indicator is dropped — it is the label source, not a feature, and
// leaving it in would leak the target into training.
//
// The file is written to a temp sibling and renamed into place, so a failed
// run never leaves a partial artifact behind.
package dataset
