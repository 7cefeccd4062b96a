package api

// BannerResponse is the payload for GET /.
type BannerResponse struct {
	Message     string `json:"message"`
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	ModelType   string `json:"model_type"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"` // RFC3339
	ModelLoaded bool   `json:"model_loaded"`
}

// ModelStatusResponse is the payload for GET /api/v1/model.
type ModelStatusResponse struct {
	ModelLoaded    bool   `json:"model_loaded"`
	ModelType      string `json:"model_type"`
	RegistryExists bool   `json:"registry_exists"`
	RegistrySize   int64  `json:"registry_size"`
}

// RegistryResponse is the payload for GET /api/v1/registry.
type RegistryResponse struct {
	Runs         int    `json:"runs"`
	RegistryFile string `json:"registry_file"`
	FileExists   bool   `json:"file_exists"`
}

// FixedRequest is the declared-schema prediction request. Pointer fields
// distinguish absent from zero — a missing declared field is a validation
// failure, never silently defaulted.
type FixedRequest struct {
	SensorA       *float64 `json:"sensor_A"`
	ErrorCount    *float64 `json:"error_count"`
	SensorAMean4h *float64 `json:"sensor_A_mean_4h"`
	SensorAMax4h  *float64 `json:"sensor_A_max_4h"`
}

// FixedResponse is the declared-schema prediction response. Alert is the
// string "True" or "False" for compatibility with existing consumers.
type FixedResponse struct {
	Status             string  `json:"status"`
	FailureProbability float64 `json:"failure_probability"`
	Alert              string  `json:"alert"`
}

// FlexibleRequest is the positional-schema prediction request.
type FlexibleRequest struct {
	Features []float64 `json:"features"`
}

// FlexibleResponse is the positional-schema prediction response.
type FlexibleResponse struct {
	Prediction   float64 `json:"prediction"`
	Confidence   float64 `json:"confidence"`
	Anomaly      bool    `json:"anomaly"`
	FeaturesUsed int     `json:"features_used"`
	Timestamp    string  `json:"timestamp"` // RFC3339
	Status       string  `json:"status"`
}

// FlexibleErrorResponse is the error shape of the positional-schema endpoint.
// Served with HTTP 200 — see the package comment.
type FlexibleErrorResponse struct {
	Error      string   `json:"error"`
	Prediction *float64 `json:"prediction"` // always null
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
