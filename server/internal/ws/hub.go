package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/failsense/failsense/server/internal/metrics"
)

const (
	// writeTimeout is the deadline for a single write to a subscriber.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-subscriber outgoing message buffer depth.
	sendBufSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins — callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Snapshot is one broadcast unit of real-time operational metrics.
// Ephemeral — built per tick, never persisted.
type Snapshot struct {
	Timestamp         string  `json:"timestamp"`
	PredictionsMade   int64   `json:"predictions_made"`
	AvgPredictionTime float64 `json:"avg_prediction_time"`
	ModelConfidence   float64 `json:"model_confidence"`
	SystemLoad        float64 `json:"system_load"`
	ActiveConnections int     `json:"active_connections"`
	AnomaliesDetected int64   `json:"anomalies_detected"`
	Throughput        float64 `json:"throughput"`
}

// Hub manages WebSocket subscribers and broadcasts an operational snapshot to
// all of them every interval.
type Hub struct {
	tracker  *metrics.Tracker
	metrics  *metrics.Metrics
	interval time.Duration

	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
}

// subscriber represents one connected monitoring client.
//
// send is never closed: the hub may still be pushing to it from a broadcast
// pass while the subscriber is being removed. Shutdown is signalled through
// done instead; messages buffered after removal are simply discarded.
type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// New creates a Hub that reads serving stats from tracker and broadcasts
// every interval. m may be nil (tests) — only the client gauge is optional.
func New(tracker *metrics.Tracker, m *metrics.Metrics, interval time.Duration) *Hub {
	return &Hub{
		tracker:     tracker,
		metrics:     m,
		interval:    interval,
		subscribers: make(map[*subscriber]struct{}),
	}
}

// Run starts the broadcast ticker loop. It pushes the current snapshot to all
// subscribers every interval. Run blocks until ctx is cancelled, then closes
// all active connections.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-t.C:
			h.broadcast()
		}
	}
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the
// subscriber. It sends the current snapshot immediately on connect, then
// continues to receive broadcasts from the ticker loop. Blocks until the
// connection closes; a disconnect removes exactly this subscriber and has no
// effect on the loop or on other subscribers.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	s := &subscriber{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufSize),
		done: make(chan struct{}),
	}
	h.register(s)
	defer h.unregister(s)

	slog.Debug("ws: subscriber connected", "id", s.id, "remote", r.RemoteAddr)

	// Send the current snapshot immediately so the UI has data right away.
	if data, err := h.buildMessage(); err == nil {
		select {
		case s.send <- data:
		default:
		}
	}

	go s.writePump()
	s.readPump() // blocks until connection closes

	slog.Debug("ws: subscriber disconnected", "id", s.id)
}

// Count returns the number of currently connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(s *subscriber) {
	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	n := len(h.subscribers)
	h.mu.Unlock()
	h.setGauge(n)
}

// unregister removes s from the active set. Idempotent: removing an
// already-absent subscriber is a no-op.
func (h *Hub) unregister(s *subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[s]; ok {
		delete(h.subscribers, s)
		close(s.done)
	}
	n := len(h.subscribers)
	h.mu.Unlock()
	h.setGauge(n)
}

func (h *Hub) broadcast() {
	data, err := h.buildMessage()
	if err != nil {
		return
	}

	h.mu.RLock()
	targets := make([]*subscriber, 0, len(h.subscribers))
	for s := range h.subscribers {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	// Collect failures during the pass; remove them only afterwards so the
	// live set is never mutated while being iterated. A subscriber removed by
	// a concurrent disconnect may still receive into its buffer here; the
	// message is discarded with the channel, never sent on the wire.
	var failed []*subscriber
	for _, s := range targets {
		select {
		case s.send <- data:
		default:
			// Subscriber's outgoing buffer is full — treat as send failure.
			failed = append(failed, s)
		}
	}
	for _, s := range failed {
		slog.Debug("ws: dropping unresponsive subscriber", "id", s.id)
		h.unregister(s)
	}
}

func (h *Hub) buildMessage() ([]byte, error) {
	return json.Marshal(h.buildSnapshot())
}

// buildSnapshot assembles the monitoring snapshot from live serving stats.
// Before the first prediction has been served, the activity fields fall back
// to synthetic placeholder values so monitoring UIs have data to render.
func (h *Hub) buildSnapshot() Snapshot {
	snap := Snapshot{
		Timestamp:         time.Now().UTC().Format(time.RFC3339Nano),
		SystemLoad:        systemLoad(),
		ActiveConnections: h.Count(),
	}

	stats := h.tracker.Stats()
	if stats.Predictions > 0 {
		snap.PredictionsMade = stats.Predictions
		snap.AvgPredictionTime = stats.AvgSeconds
		snap.ModelConfidence = stats.AvgConfidence
		snap.AnomaliesDetected = stats.Anomalies
		snap.Throughput = stats.PerMinute
		return snap
	}

	// Synthetic placeholders, matching the historical demo value ranges.
	snap.PredictionsMade = int64(rand.Intn(1000))
	snap.AvgPredictionTime = round3(0.1 + rand.Float64()*1.9)
	snap.ModelConfidence = round3(0.7 + rand.Float64()*0.29)
	snap.AnomaliesDetected = int64(rand.Intn(10))
	snap.Throughput = float64(50 + rand.Intn(150))
	return snap
}

// systemLoad returns the host CPU utilization as a 0–1 fraction, or a
// synthetic placeholder when the probe is unavailable.
func systemLoad() float64 {
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		return round3(pct[0] / 100)
	}
	return round3(0.1 + rand.Float64()*0.7)
}

func round3(v float64) float64 {
	return float64(int(v*1000+0.5)) / 1000
}

func (h *Hub) setGauge(n int) {
	if h.metrics != nil {
		h.metrics.WSClients.Set(float64(n))
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subscribers {
		close(s.done)
		delete(h.subscribers, s)
	}
	if h.metrics != nil {
		h.metrics.WSClients.Set(0)
	}
}

// writePump drains the subscriber's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per subscriber.
func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-s.done:
			// Hub shutting down or subscriber removed.
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			s.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
			return

		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads frames from the connection to process control messages
// (pong, close) and detect disconnects. Blocks until the connection closes.
func (s *subscriber) readPump() {
	defer s.conn.Close()
	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			break
		}
	}
}
