package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var testOpts = Options{
	TimestampColumn: "timestamp",
	IndicatorColumn: "is_failed",
	MetricColumn:    "sensor_A",
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "raw.csv")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"), testOpts)
	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("Load: got %v, want ErrMissingInput", err)
	}
}

func TestLoad_MissingColumn(t *testing.T) {
	p := writeCSV(t, "timestamp,sensor_A\n2024-01-01T00:00:00Z,1.0\n")
	_, err := Load(p, testOpts)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("Load: got %v, want ErrSchemaMismatch", err)
	}
}

func TestLoad_SortsByTimestamp(t *testing.T) {
	p := writeCSV(t, `timestamp,is_failed,sensor_A
2024-01-01T02:00:00Z,0,3.0
2024-01-01T00:00:00Z,0,1.0
2024-01-01T01:00:00Z,1,2.0
`)
	s, err := Load(p, testOpts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Records) != 3 {
		t.Fatalf("records: got %d, want 3", len(s.Records))
	}
	for i := 1; i < len(s.Records); i++ {
		if s.Records[i].Timestamp.Before(s.Records[i-1].Timestamp) {
			t.Fatalf("records not sorted: %v before %v",
				s.Records[i].Timestamp, s.Records[i-1].Timestamp)
		}
	}
	if s.Records[1].Metric != 2.0 || !s.Records[1].Failed {
		t.Errorf("middle record: got metric=%v failed=%v, want 2.0 true",
			s.Records[1].Metric, s.Records[1].Failed)
	}
}

func TestLoad_PassthroughAttrs(t *testing.T) {
	p := writeCSV(t, `timestamp,is_failed,sensor_A,error_count
2024-01-01 00:00:00,0,1.5,7
`)
	s, err := Load(p, testOpts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.AttrColumns) != 1 || s.AttrColumns[0] != "error_count" {
		t.Fatalf("attr columns: got %v, want [error_count]", s.AttrColumns)
	}
	if got := s.Records[0].Attrs["error_count"]; got != 7 {
		t.Errorf("error_count: got %v, want 7", got)
	}
}

func TestLoad_SpaceSeparatedTimestamps(t *testing.T) {
	p := writeCSV(t, `timestamp,is_failed,sensor_A
2024-03-05 12:30:00,0,1.0
`)
	s, err := Load(p, testOpts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := time.Date(2024, 3, 5, 12, 30, 0, 0, time.UTC)
	if !s.Records[0].Timestamp.Equal(want) {
		t.Errorf("timestamp: got %v, want %v", s.Records[0].Timestamp, want)
	}
}

func TestLoad_BadMetricIsFatal(t *testing.T) {
	p := writeCSV(t, `timestamp,is_failed,sensor_A
2024-01-01T00:00:00Z,0,not-a-number
`)
	if _, err := Load(p, testOpts); err == nil {
		t.Fatal("Load: expected error for unparseable metric, got nil")
	}
}

func TestParseIndicator(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{"0", false},
		{"1", true},
		{"2", true},
		{"0.5", false},
		{"true", true},
		{"false", false},
	}
	for _, c := range cases {
		got, err := parseIndicator(c.raw)
		if err != nil {
			t.Errorf("parseIndicator(%q): %v", c.raw, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseIndicator(%q): got %v, want %v", c.raw, got, c.want)
		}
	}
}
