package features

import (
	"testing"
	"time"

	"github.com/failsense/failsense/pipeline/internal/ingest"
	"github.com/failsense/failsense/pkg/types"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// series builds a sorted test series with records at the given hour offsets.
func series(offsets []time.Duration, metrics []float64) *ingest.Series {
	s := &ingest.Series{MetricColumn: "sensor_A"}
	for i, off := range offsets {
		s.Records = append(s.Records, types.TelemetryRecord{
			Timestamp: t0.Add(off),
			Metric:    metrics[i],
		})
	}
	return s
}

func hours(hs ...float64) []time.Duration {
	out := make([]time.Duration, len(hs))
	for i, h := range hs {
		out[i] = time.Duration(h * float64(time.Hour))
	}
	return out
}

func TestBuild_ColdStartDefaultsToZero(t *testing.T) {
	s := series(hours(0, 1, 2), []float64{10, 20, 30})
	out := Build(s, 4*time.Hour)

	if out[0].Mean != 0 || out[0].Max != 0 {
		t.Errorf("first record: got mean=%v max=%v, want 0 0", out[0].Mean, out[0].Max)
	}
}

func TestBuild_ExcludesOwnTimestamp(t *testing.T) {
	s := series(hours(0, 1, 2), []float64{10, 20, 30})
	out := Build(s, 4*time.Hour)

	// At t=2h the window holds records at 0h and 1h only — never the 30 at 2h.
	if out[2].Mean != 15 {
		t.Errorf("mean at 2h: got %v, want 15", out[2].Mean)
	}
	if out[2].Max != 20 {
		t.Errorf("max at 2h: got %v, want 20", out[2].Max)
	}
}

func TestBuild_DurationWindowUnderIrregularSampling(t *testing.T) {
	// Samples at 0h, 3.5h, 4h, 9h. Window is 4h.
	s := series(hours(0, 3.5, 4, 9), []float64{100, 2, 4, 8})
	out := Build(s, 4*time.Hour)

	// t=4h: window [0h, 4h) — includes 0h (left edge closed) and 3.5h.
	if out[2].Mean != 51 {
		t.Errorf("mean at 4h: got %v, want 51", out[2].Mean)
	}
	if out[2].Max != 100 {
		t.Errorf("max at 4h: got %v, want 100", out[2].Max)
	}

	// t=9h: window [5h, 9h) — nothing inside, cold-start default applies.
	if out[3].Mean != 0 || out[3].Max != 0 {
		t.Errorf("aggregates at 9h: got mean=%v max=%v, want 0 0", out[3].Mean, out[3].Max)
	}
}

func TestBuild_LeftEdgeIsClosed(t *testing.T) {
	// Record exactly window-width in the past must be included.
	s := series(hours(0, 4), []float64{7, 1})
	out := Build(s, 4*time.Hour)

	if out[1].Mean != 7 || out[1].Max != 7 {
		t.Errorf("aggregates at 4h: got mean=%v max=%v, want 7 7", out[1].Mean, out[1].Max)
	}
}

func TestBuild_DuplicateTimestampsExcludedWithOwn(t *testing.T) {
	// Two records share t=1h. Neither may see the other — both only see t=0h.
	s := series(hours(0, 1, 1), []float64{5, 50, 500})
	out := Build(s, 4*time.Hour)

	for i := 1; i <= 2; i++ {
		if out[i].Mean != 5 || out[i].Max != 5 {
			t.Errorf("record %d: got mean=%v max=%v, want 5 5", i, out[i].Mean, out[i].Max)
		}
	}
}

// TestBuild_NoLeakage verifies the leakage-prevention invariant directly: the
// aggregates at time t must not change under any mutation of records at
// timestamp ≥ t.
func TestBuild_NoLeakage(t *testing.T) {
	offsets := hours(0, 1, 2, 3, 4, 5)
	base := series(offsets, []float64{1, 2, 3, 4, 5, 6})
	mutated := series(offsets, []float64{1, 2, 3, 999, -999, 12345})

	outBase := Build(base, 4*time.Hour)
	outMut := Build(mutated, 4*time.Hour)

	// Records 0..3 precede every mutated value's timestamp (3h, 4h, 5h) or
	// coincide with the first mutation — all four must be identical.
	for i := 0; i <= 3; i++ {
		if outBase[i] != outMut[i] {
			t.Errorf("record %d changed under future mutation: %+v vs %+v",
				i, outBase[i], outMut[i])
		}
	}
}

func TestBuild_PreservesCardinalityAndOrder(t *testing.T) {
	s := series(hours(0, 1, 2, 3), []float64{1, 2, 3, 4})
	out := Build(s, 2*time.Hour)

	if len(out) != len(s.Records) {
		t.Fatalf("cardinality: got %d, want %d", len(out), len(s.Records))
	}
	for i := range out {
		if !out[i].Timestamp.Equal(s.Records[i].Timestamp) {
			t.Errorf("record %d: timestamp %v, want %v",
				i, out[i].Timestamp, s.Records[i].Timestamp)
		}
	}
}

func TestColumnNames(t *testing.T) {
	if got := MeanColumn("sensor_A", 4*time.Hour); got != "sensor_A_mean_4h" {
		t.Errorf("MeanColumn: got %q, want sensor_A_mean_4h", got)
	}
	if got := MaxColumn("sensor_A", 4*time.Hour); got != "sensor_A_max_4h" {
		t.Errorf("MaxColumn: got %q, want sensor_A_max_4h", got)
	}
	if got := MeanColumn("temp", 90*time.Minute); got != "temp_mean_1h30m0s" {
		t.Errorf("MeanColumn sub-hour: got %q, want temp_mean_1h30m0s", got)
	}
}
