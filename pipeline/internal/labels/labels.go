package labels

import (
	"time"

	"github.com/failsense/failsense/pipeline/internal/ingest"
)

// Build returns one label per record: true iff any record with timestamp in
// (t, t+horizon] has the failure indicator set. Output length and order match
// the input.
//
// The series must be sorted by timestamp ascending. Both window pointers are
// monotone, and a prefix count of failures makes each membership check O(1),
// so the pass is linear.
func Build(s *ingest.Series, horizon time.Duration) []bool {
	n := len(s.Records)
	out := make([]bool, n)

	// fails[i] = number of failure records among Records[0:i].
	fails := make([]int, n+1)
	for i, rec := range s.Records {
		fails[i+1] = fails[i]
		if rec.Failed {
			fails[i+1]++
		}
	}

	lo, hi := 0, 0
	for i, rec := range s.Records {
		t := rec.Timestamp

		// lo: first index with timestamp strictly greater than t. Rows that
		// share t's timestamp are excluded along with t itself.
		for lo < n && !s.Records[lo].Timestamp.After(t) {
			lo++
		}
		// hi: first index with timestamp beyond t+horizon.
		if hi < lo {
			hi = lo
		}
		for hi < n && !s.Records[hi].Timestamp.After(t.Add(horizon)) {
			hi++
		}

		out[i] = fails[hi]-fails[lo] > 0
	}

	return out
}
