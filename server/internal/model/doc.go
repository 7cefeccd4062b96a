// Package model provides the predictor capability behind the prediction
// service.
//
// Predictor is the single abstraction callers see: a feature vector in, a
// failure probability out. Two concrete variants exist — TrainedModel, loaded
// once at startup from an artifact referenced by the run registry, and
// SyntheticModel, a pseudo-random stand-in used whenever no trained artifact
// is available or loadable. Callers never branch on which variant is active;
// Gateway owns the active predictor and supports atomic hot-swap when the
// artifact file changes on disk.
//
// Reindex maps a named feature set onto a model's expected column order:
// missing columns fill with 0, unknown names are dropped. It runs on every
// request regardless of variant.
package model
