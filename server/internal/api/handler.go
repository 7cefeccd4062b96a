package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/failsense/failsense/server/internal/alerts"
	"github.com/failsense/failsense/server/internal/model"
	"github.com/failsense/failsense/server/internal/predict"
	"github.com/failsense/failsense/server/internal/registry"
)

// Handler is the HTTP handler for the prediction and status endpoints.
type Handler struct {
	fixed    *predict.Service
	flexible *predict.Service
	gw       *model.Gateway
	reg      *registry.Registry
	alerts   *alerts.Engine
	mux      *http.ServeMux
	now      func() time.Time // injectable for deterministic tests
}

// New creates a Handler wired to the two prediction services and registers
// all routes. alertEngine may be nil to disable rule evaluation.
func New(fixed, flexible *predict.Service, gw *model.Gateway, reg *registry.Registry, alertEngine *alerts.Engine) *Handler {
	h := &Handler{
		fixed:    fixed,
		flexible: flexible,
		gw:       gw,
		reg:      reg,
		alerts:   alertEngine,
		mux:      http.NewServeMux(),
		now:      time.Now,
	}

	h.mux.HandleFunc("/", h.banner)
	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/model", h.modelStatus)
	h.mux.HandleFunc("/api/v1/registry", h.registryInfo)
	h.mux.HandleFunc("/api/v1/alerts", h.activeAlerts)
	h.mux.HandleFunc("/api/v1/predict", h.predictFixed)
	h.mux.HandleFunc("/api/v1/predict/raw", h.predictFlexible)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// banner returns GET / — the service identity line.
func (h *Handler) banner(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BannerResponse{
		Message:     "FailSense Predictive Monitor API",
		Status:      "running",
		ModelLoaded: h.gw.Trained(),
		ModelType:   h.gw.ModelName(),
	})
}

// health returns GET /api/v1/health — overall readiness.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Timestamp:   h.now().UTC().Format(time.RFC3339),
		ModelLoaded: h.gw.Trained(),
	})
}

// modelStatus returns GET /api/v1/model — predictor variant and backing store.
func (h *Handler) modelStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	exists, size := h.reg.Info()
	jsonResp(w, http.StatusOK, ModelStatusResponse{
		ModelLoaded:    h.gw.Trained(),
		ModelType:      h.gw.ModelName(),
		RegistryExists: exists,
		RegistrySize:   size,
	})
}

// registryInfo returns GET /api/v1/registry — run registry contents summary.
func (h *Handler) registryInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	n, err := h.reg.Count()
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	exists, _ := h.reg.Info()
	jsonResp(w, http.StatusOK, RegistryResponse{
		Runs:         n,
		RegistryFile: h.reg.Path(),
		FileExists:   exists,
	})
}

// activeAlerts returns GET /api/v1/alerts — firing and recently resolved alerts.
func (h *Handler) activeAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.alerts == nil {
		jsonResp(w, http.StatusOK, []struct{}{})
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Active())
}

// predictFixed handles POST /api/v1/predict — the declared-schema endpoint.
func (h *Handler) predictFixed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req FixedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	// Only present fields make it into the value map; the service rejects
	// the request if a declared column is missing.
	values := make(map[string]float64, 4)
	fields := []struct {
		name string
		v    *float64
	}{
		{"sensor_A", req.SensorA},
		{"error_count", req.ErrorCount},
		{"sensor_A_mean_4h", req.SensorAMean4h},
		{"sensor_A_max_4h", req.SensorAMax4h},
	}
	for _, f := range fields {
		if f.v != nil {
			values[f.name] = *f.v
		}
	}

	res, err := h.fixed.Predict(r.Context(), predict.Request{Values: values})
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if res.Status == predict.StatusError {
		jsonErr(w, http.StatusInternalServerError, res.Err)
		return
	}

	h.evaluateAlerts(h.fixed.Schema().Name, res)

	alert := "False"
	if res.Alert {
		alert = "True"
	}
	jsonResp(w, http.StatusOK, FixedResponse{
		Status:             res.Status,
		FailureProbability: res.Probability,
		Alert:              alert,
	})
}

// predictFlexible handles POST /api/v1/predict/raw — the positional-schema
// endpoint. All failures are reported as HTTP 200 with an "error" field; see
// the package comment for why.
func (h *Handler) predictFlexible(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req FlexibleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResp(w, http.StatusOK, FlexibleErrorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	values := make(map[string]float64, len(req.Features))
	order := make([]string, len(req.Features))
	for i, v := range req.Features {
		name := positionalName(i)
		values[name] = v
		order[i] = name
	}

	res, err := h.flexible.Predict(r.Context(), predict.Request{Values: values, Order: order})
	if err != nil {
		jsonResp(w, http.StatusOK, FlexibleErrorResponse{Error: err.Error()})
		return
	}
	if res.Status == predict.StatusError {
		jsonResp(w, http.StatusOK, FlexibleErrorResponse{Error: res.Err})
		return
	}

	h.evaluateAlerts(h.flexible.Schema().Name, res)

	jsonResp(w, http.StatusOK, FlexibleResponse{
		Prediction:   res.Probability,
		Confidence:   res.Confidence,
		Anomaly:      res.Alert,
		FeaturesUsed: res.FeaturesUsed,
		Timestamp:    res.Timestamp.UTC().Format(time.RFC3339Nano),
		Status:       res.Status,
	})
}

// --- helpers ----------------------------------------------------------------

func (h *Handler) evaluateAlerts(schema string, res predict.Result) {
	if h.alerts == nil {
		return
	}
	h.alerts.Evaluate(alerts.Observation{
		Schema:      schema,
		Probability: res.Probability,
		Confidence:  res.Confidence,
		Alert:       res.Alert,
	})
}

// positionalName names the i-th positional feature, matching the historical
// column scheme.
func positionalName(i int) string {
	return "feature_" + strconv.Itoa(i)
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
