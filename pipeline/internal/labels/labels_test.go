package labels

import (
	"testing"
	"time"

	"github.com/failsense/failsense/pipeline/internal/ingest"
	"github.com/failsense/failsense/pkg/types"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func series(n int, step time.Duration, failedAt ...int) *ingest.Series {
	failed := make(map[int]bool, len(failedAt))
	for _, i := range failedAt {
		failed[i] = true
	}
	s := &ingest.Series{MetricColumn: "sensor_A"}
	for i := 0; i < n; i++ {
		s.Records = append(s.Records, types.TelemetryRecord{
			Timestamp: t0.Add(time.Duration(i) * step),
			Failed:    failed[i],
		})
	}
	return s
}

// TestBuild_WarnsAheadOfFailure is the canonical scenario: hourly records at
// 00:00..05:00 with a failure only at 05:00 and a 24h horizon. Every record
// before the failure is labeled positive; the failure record itself resolves
// over an empty forward window and stays negative.
func TestBuild_WarnsAheadOfFailure(t *testing.T) {
	s := series(6, time.Hour, 5)
	out := Build(s, 24*time.Hour)

	for i := 0; i <= 4; i++ {
		if !out[i] {
			t.Errorf("label at %02d:00: got false, want true", i)
		}
	}
	if out[5] {
		t.Error("label at 05:00: got true, want false (no record strictly after)")
	}
}

func TestBuild_NeverConsultsOwnIndicator(t *testing.T) {
	// Only the last record failed; with nothing after it, every label is 0 —
	// including the failed record's own.
	s := series(3, time.Hour, 2)
	out := Build(s, 24*time.Hour)

	if out[2] {
		t.Error("failed record labeled positive from its own indicator")
	}

	// And a failure at the front labels nothing (no record precedes it).
	s = series(3, time.Hour, 0)
	out = Build(s, 24*time.Hour)
	for i, l := range out {
		if l {
			t.Errorf("label %d: got true, want false", i)
		}
	}
}

func TestBuild_HorizonIsInclusive(t *testing.T) {
	// Failure exactly horizon-distance ahead still counts: (t, t+H].
	s := series(2, 4*time.Hour, 1)
	out := Build(s, 4*time.Hour)

	if !out[0] {
		t.Error("label at 0h: got false, want true (failure at exactly t+H)")
	}
}

func TestBuild_BeyondHorizonDoesNotCount(t *testing.T) {
	s := series(2, 5*time.Hour, 1)
	out := Build(s, 4*time.Hour)

	if out[0] {
		t.Error("label at 0h: got true, want false (failure beyond horizon)")
	}
}

func TestBuild_SharedTimestampExcluded(t *testing.T) {
	// Two records share a timestamp; one is a failure. "Strictly greater"
	// excludes the co-timestamped failure from the other's forward window.
	s := &ingest.Series{Records: []types.TelemetryRecord{
		{Timestamp: t0},
		{Timestamp: t0, Failed: true},
	}}
	out := Build(s, 24*time.Hour)

	if out[0] || out[1] {
		t.Errorf("labels: got %v %v, want false false", out[0], out[1])
	}
}

func TestBuild_EmptySeries(t *testing.T) {
	out := Build(&ingest.Series{}, time.Hour)
	if len(out) != 0 {
		t.Fatalf("labels: got %d entries, want 0", len(out))
	}
}
