package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/failsense/failsense/server/internal/config"
)

const (
	defaultCooldown   = 15 * time.Minute
	maxHistoryLen     = 200
	recentWindowHours = 1
)

// Observation is the per-prediction input the rule engine evaluates.
type Observation struct {
	// Schema names the preset that served the prediction; used as the
	// deduplication scope.
	Schema string

	Probability float64
	Confidence  float64
	Alert       bool
}

// Alert represents a single alert event produced by the rule engine.
type Alert struct {
	ID         string     `json:"id"`
	RuleName   string     `json:"rule_name"`
	Schema     string     `json:"schema"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"` // "firing" | "resolved"
}

// Engine evaluates alert rules against served predictions and delivers
// webhook notifications when rules fire or resolve.
//
// Engine is safe for concurrent use.
type Engine struct {
	rules    []config.AlertRule
	webhooks []config.WebhookConfig

	mu       sync.Mutex
	active   map[string]*Alert    // key: "ruleName:schema"
	lastFire map[string]time.Time // last fire time per key (for cooldown)
	history  []*Alert             // recently resolved alerts
	client   *http.Client
}

// New creates an Engine from the server alert configuration.
// An Engine with empty rules is valid — Evaluate becomes a no-op.
func New(cfg config.AlertsConfig) *Engine {
	return &Engine{
		rules:    cfg.Rules,
		webhooks: cfg.Webhooks,
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate tests all configured rules against obs. A rule whose condition
// holds fires an alert (subject to its cooldown); a rule whose condition no
// longer holds resolves any alert it had firing. Both transitions trigger
// asynchronous webhook delivery.
func (e *Engine) Evaluate(obs Observation) {
	now := time.Now()
	for _, rule := range e.rules {
		key := rule.Name + ":" + obs.Schema
		if fires, value := evalCondition(rule.Condition, obs); fires {
			e.fire(rule, obs.Schema, key, value, now)
		} else {
			e.resolve(rule, obs.Schema, key, now)
		}
	}
}

// fire records a new alert for key unless one fired within the rule's
// cooldown.
func (e *Engine) fire(rule config.AlertRule, schema, key string, value float64, now time.Time) {
	cooldown := rule.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	sev := rule.Severity
	if sev == "" {
		sev = "warning"
	}

	e.mu.Lock()
	if now.Sub(e.lastFire[key]) <= cooldown {
		e.mu.Unlock()
		return
	}
	a := &Alert{
		ID:       fmt.Sprintf("%s:%s:%d", rule.Name, schema, now.UnixNano()),
		RuleName: rule.Name,
		Schema:   schema,
		Severity: sev,
		Value:    value,
		Message: fmt.Sprintf("[%s] %s fired on %s — %s = %.3f",
			sev, rule.Name, schema, rule.Condition, value),
		FiredAt: now,
		State:   "firing",
	}
	e.active[key] = a
	e.lastFire[key] = now
	cp := *a
	e.mu.Unlock()

	slog.Warn("alert fired",
		"rule", rule.Name,
		"schema", schema,
		"value", value,
		"severity", sev,
	)
	go e.deliver(&cp)
}

// resolve closes the firing alert for key, if any, and moves it into the
// bounded history.
func (e *Engine) resolve(rule config.AlertRule, schema, key string, now time.Time) {
	e.mu.Lock()
	a, ok := e.active[key]
	if !ok || a.State != "firing" {
		e.mu.Unlock()
		return
	}
	resolved := now
	a.State = "resolved"
	a.ResolvedAt = &resolved
	delete(e.active, key)

	e.history = append(e.history, a)
	if len(e.history) > maxHistoryLen {
		e.history = e.history[len(e.history)-maxHistoryLen:]
	}
	cp := *a
	e.mu.Unlock()

	slog.Info("alert resolved", "rule", rule.Name, "schema", schema)
	go e.deliver(&cp)
}

// Active returns copies of all currently firing alerts plus any alerts
// resolved within the past hour.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := time.Now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))

	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}
