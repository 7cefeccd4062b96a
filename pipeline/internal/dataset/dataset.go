package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/failsense/failsense/pipeline/internal/features"
	"github.com/failsense/failsense/pipeline/internal/ingest"
	"github.com/failsense/failsense/pkg/types"
)

// LabelColumn is the name of the target column in the prepared artifact.
const LabelColumn = "will_fail"

// Stats summarizes the written artifact for logging.
type Stats struct {
	Rows      int
	Positives int
	Columns   []string
}

// Write joins the series with its features and labels and writes the prepared
// CSV to path. feats and lbls must have the same length and order as
// s.Records; a mismatch indicates a pipeline bug and is returned as an error
// rather than silently truncated.
func Write(path string, s *ingest.Series, feats []types.FeatureRecord, lbls []bool, window time.Duration) (*Stats, error) {
	if len(feats) != len(s.Records) || len(lbls) != len(s.Records) {
		return nil, fmt.Errorf("dataset: cardinality mismatch: %d records, %d features, %d labels",
			len(s.Records), len(feats), len(lbls))
	}

	header := make([]string, 0, len(s.AttrColumns)+5)
	header = append(header, "timestamp", s.MetricColumn)
	header = append(header, s.AttrColumns...)
	header = append(header,
		features.MeanColumn(s.MetricColumn, window),
		features.MaxColumn(s.MetricColumn, window),
		LabelColumn,
	)

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("dataset: create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name()) // no-op after a successful rename
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("dataset: write header: %w", err)
	}

	stats := &Stats{Rows: len(s.Records), Columns: header}
	row := make([]string, len(header))
	for i, rec := range s.Records {
		row = row[:0]
		row = append(row,
			rec.Timestamp.UTC().Format(time.RFC3339),
			formatFloat(rec.Metric),
		)
		for _, name := range s.AttrColumns {
			row = append(row, formatFloat(rec.Attrs[name]))
		}
		row = append(row, formatFloat(feats[i].Mean), formatFloat(feats[i].Max))
		if lbls[i] {
			row = append(row, "1")
			stats.Positives++
		} else {
			row = append(row, "0")
		}

		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("dataset: write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("dataset: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("dataset: close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("dataset: rename into place: %w", err)
	}

	return stats, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
