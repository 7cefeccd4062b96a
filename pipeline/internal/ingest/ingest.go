package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/failsense/failsense/pkg/types"
)

// Sentinel errors for the two fatal precondition failures. Both abort the run
// before any row is processed.
var (
	ErrMissingInput   = errors.New("ingest: input file not found")
	ErrSchemaMismatch = errors.New("ingest: required column missing")
)

// timeLayouts are the accepted timestamp formats, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Options names the required columns in the raw CSV.
type Options struct {
	TimestampColumn string
	IndicatorColumn string
	MetricColumn    string
}

// Series is a validated, time-sorted telemetry sequence.
type Series struct {
	// MetricColumn is the name of the core metric column, carried along so
	// downstream stages can derive feature column names from it.
	MetricColumn string

	// AttrColumns lists the passthrough columns in their original file
	// order. Every record's Attrs map has exactly these keys.
	AttrColumns []string

	// Records is sorted by Timestamp ascending.
	Records []types.TelemetryRecord
}

// Load reads the raw telemetry CSV at path, validates the required columns,
// parses every row and returns the series sorted by timestamp ascending.
//
// A missing file maps to ErrMissingInput; a header without one of the required
// columns maps to ErrSchemaMismatch. Any unparseable cell is also fatal — the
// offline pipeline never emits a partial result.
func Load(path string, opts Options) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("ingest: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read header of %q: %w", path, err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	required := []string{opts.TimestampColumn, opts.IndicatorColumn, opts.MetricColumn}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: want %v, file has %v", ErrSchemaMismatch, required, header)
		}
	}

	tsIdx := col[opts.TimestampColumn]
	failIdx := col[opts.IndicatorColumn]
	metricIdx := col[opts.MetricColumn]

	// Everything that is not a required column is a passthrough attribute.
	var attrCols []string
	for _, name := range header {
		name = strings.TrimSpace(name)
		if name != opts.TimestampColumn && name != opts.IndicatorColumn && name != opts.MetricColumn {
			attrCols = append(attrCols, name)
		}
	}

	s := &Series{
		MetricColumn: opts.MetricColumn,
		AttrColumns:  attrCols,
	}

	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: %q line %d: %w", path, line, err)
		}

		ts, err := parseTime(row[tsIdx])
		if err != nil {
			return nil, fmt.Errorf("ingest: %q line %d: column %q: %w", path, line, opts.TimestampColumn, err)
		}

		metric, err := strconv.ParseFloat(strings.TrimSpace(row[metricIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("ingest: %q line %d: column %q: %w", path, line, opts.MetricColumn, err)
		}

		failed, err := parseIndicator(row[failIdx])
		if err != nil {
			return nil, fmt.Errorf("ingest: %q line %d: column %q: %w", path, line, opts.IndicatorColumn, err)
		}

		rec := types.TelemetryRecord{
			Timestamp: ts,
			Metric:    metric,
			Failed:    failed,
			Attrs:     make(map[string]float64, len(attrCols)),
		}
		for _, name := range attrCols {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col[name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("ingest: %q line %d: column %q: %w", path, line, name, err)
			}
			rec.Attrs[name] = v
		}

		s.Records = append(s.Records, rec)
	}

	// Stable, so rows sharing a timestamp keep their file order.
	sort.SliceStable(s.Records, func(i, j int) bool {
		return s.Records[i].Timestamp.Before(s.Records[j].Timestamp)
	})

	return s, nil
}

// parseTime tries each accepted layout in order.
func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// parseIndicator accepts 0/1 numerics and true/false strings. Any value ≥ 1
// counts as failed, matching the historical max-over-window label semantics.
func parseIndicator(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return false, fmt.Errorf("unrecognized failure indicator %q", raw)
	}
	return v >= 1, nil
}
