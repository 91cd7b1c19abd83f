package models

// BackendHealth is the response of GET /health.
type BackendHealth struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Scheduler string `json:"scheduler"`
}

// Healthy reports whether the backend considers itself fully up.
func (h BackendHealth) Healthy() bool {
	return h.Status == "healthy"
}
