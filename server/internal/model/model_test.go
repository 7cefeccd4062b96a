package model

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/failsense/failsense/server/internal/registry"
)

func writeArtifact(t *testing.T, art Artifact) string {
	t.Helper()
	data, err := json.Marshal(art)
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	p := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return p
}

func TestLoadArtifact_Valid(t *testing.T) {
	p := writeArtifact(t, Artifact{
		Name:    "FailurePredictor",
		Version: "2",
		Columns: []string{"a", "b"},
		Weights: []float64{1, -1},
		Bias:    0.5,
	})

	tm, err := LoadArtifact(p)
	if err != nil {
		t.Fatalf("LoadArtifact: %v", err)
	}
	if got := tm.Name(); got != "FailurePredictor:2" {
		t.Errorf("Name: got %q, want FailurePredictor:2", got)
	}
	if len(tm.Columns()) != 2 {
		t.Errorf("Columns: got %v, want 2 entries", tm.Columns())
	}
}

func TestLoadArtifact_Invalid(t *testing.T) {
	cases := []struct {
		name string
		art  Artifact
	}{
		{"no columns", Artifact{Weights: []float64{1}}},
		{"weight mismatch", Artifact{Columns: []string{"a", "b"}, Weights: []float64{1}}},
	}
	for _, c := range cases {
		p := writeArtifact(t, c.art)
		if _, err := LoadArtifact(p); err == nil {
			t.Errorf("%s: expected error, got nil", c.name)
		}
	}
}

func TestTrainedModel_Predict(t *testing.T) {
	p := writeArtifact(t, Artifact{
		Name:    "m",
		Columns: []string{"a", "b"},
		Weights: []float64{2, -1},
	})
	tm, err := LoadArtifact(p)
	if err != nil {
		t.Fatalf("LoadArtifact: %v", err)
	}

	// z = 0 → sigmoid(0) = 0.5
	got, err := tm.Predict(context.Background(), []float64{0.5, 1})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 0.5 {
		t.Errorf("Predict: got %v, want 0.5", got)
	}

	// Larger z → larger probability.
	hi, _ := tm.Predict(context.Background(), []float64{3, 0})
	if hi <= got {
		t.Errorf("Predict monotonicity: %v not above %v", hi, got)
	}

	if _, err := tm.Predict(context.Background(), []float64{1}); err == nil {
		t.Error("Predict: expected error for short vector, got nil")
	}
}

func TestSyntheticModel_Range(t *testing.T) {
	m := NewSyntheticSeeded(1)
	for i := 0; i < 100; i++ {
		p, err := m.Predict(context.Background(), nil)
		if err != nil {
			t.Fatalf("Predict: %v", err)
		}
		if p < 0 || p >= 1 {
			t.Fatalf("Predict: %v out of [0, 1)", p)
		}
	}
	if m.Columns() != nil {
		t.Error("Columns: synthetic variant must not declare columns")
	}
}

func TestReindex(t *testing.T) {
	vec := Reindex(map[string]float64{"b": 2, "d": 9}, []string{"a", "b", "c"})
	want := []float64{0, 2, 0}
	for i := range want {
		if vec[i] != want[i] {
			t.Fatalf("Reindex: got %v, want %v", vec, want)
		}
	}
	if len(vec) != 3 {
		t.Fatalf("Reindex: got %d entries, want 3", len(vec))
	}
}

func TestGateway_Swap(t *testing.T) {
	gw := NewGateway(NewSyntheticSeeded(1), false)
	if gw.Trained() {
		t.Fatal("Trained: got true for synthetic gateway")
	}
	if gw.ModelName() != "synthetic" {
		t.Errorf("ModelName: got %q, want synthetic", gw.ModelName())
	}

	p := writeArtifact(t, Artifact{
		Name:    "m",
		Version: "1",
		Columns: []string{"a"},
		Weights: []float64{1},
	})
	tm, err := LoadArtifact(p)
	if err != nil {
		t.Fatalf("LoadArtifact: %v", err)
	}
	gw.Swap(tm, true)

	if !gw.Trained() {
		t.Error("Trained: got false after swap")
	}
	if gw.ModelName() != "m:1" {
		t.Errorf("ModelName: got %q, want m:1", gw.ModelName())
	}
	if len(gw.Columns()) != 1 {
		t.Errorf("Columns: got %v, want 1 entry", gw.Columns())
	}
}

func TestLoad_FallsBackToSynthetic(t *testing.T) {
	reg, err := registry.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	defer reg.Close()

	// Unregistered run: synthetic fallback, not an error.
	gw, err := Load(reg, "missing")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if gw.Trained() {
		t.Error("Trained: got true for unregistered run")
	}

	// Registered run whose artifact is gone: also falls back.
	if err := reg.Register(&registry.RunRecord{RunID: "dangling", ArtifactPath: "/no/such/file"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	gw, err = Load(reg, "dangling")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if gw.Trained() {
		t.Error("Trained: got true for dangling artifact")
	}
}

func TestLoad_TrainedPath(t *testing.T) {
	reg, err := registry.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	defer reg.Close()

	p := writeArtifact(t, Artifact{
		Name:    "m",
		Version: "1",
		Columns: []string{"a"},
		Weights: []float64{1},
	})
	if err := reg.Register(&registry.RunRecord{RunID: "ok", ArtifactPath: p}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	gw, err := Load(reg, "ok")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !gw.Trained() {
		t.Error("Trained: got false for valid registered artifact")
	}
}
