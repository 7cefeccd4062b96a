// Package registry implements the run registry: an embedded bbolt key-value
// store mapping opaque run identifiers to trained-model artifact records.
//
// The registry is the serving side of the training handoff. Training (an
// external collaborator) produces an artifact file and registers it under a
// run ID; the server looks the ID up at startup. A missing key is an expected
// condition — the caller falls back to the synthetic predictor rather than
// failing startup.
package registry
