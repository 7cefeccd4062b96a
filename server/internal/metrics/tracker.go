package metrics

import (
	"sync"
	"time"
)

// throughputWindow is the trailing span over which recent-prediction
// throughput is computed for monitoring snapshots.
const throughputWindow = time.Minute

// Stats is a point-in-time summary of serving activity.
type Stats struct {
	Predictions   int64
	Anomalies     int64
	AvgSeconds    float64 // mean handling latency; 0 until the first prediction
	AvgConfidence float64 // mean reported confidence; 0 until the first prediction
	PerMinute     float64 // predictions in the trailing minute
}

// Tracker accumulates serving statistics for the monitoring stream.
// Safe for concurrent use.
type Tracker struct {
	mu            sync.Mutex
	predictions   int64
	anomalies     int64
	totalSeconds  float64
	totalConf     float64
	recent        []time.Time // prediction times within throughputWindow, oldest first
	now           func() time.Time
}

// NewTracker returns a ready-to-use Tracker.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Observe records one served prediction.
func (t *Tracker) Observe(d time.Duration, confidence float64, anomaly bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.predictions++
	t.totalSeconds += d.Seconds()
	t.totalConf += confidence
	if anomaly {
		t.anomalies++
	}

	t.recent = append(t.recent, now)
	t.trim(now)
}

// Stats returns the current summary.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.trim(t.now())

	s := Stats{
		Predictions: t.predictions,
		Anomalies:   t.anomalies,
		PerMinute:   float64(len(t.recent)),
	}
	if t.predictions > 0 {
		s.AvgSeconds = t.totalSeconds / float64(t.predictions)
		s.AvgConfidence = t.totalConf / float64(t.predictions)
	}
	return s
}

// trim drops recent entries older than the throughput window.
// Caller must hold mu.
func (t *Tracker) trim(now time.Time) {
	cutoff := now.Add(-throughputWindow)
	i := 0
	for i < len(t.recent) && t.recent[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		t.recent = append(t.recent[:0], t.recent[i:]...)
	}
}
