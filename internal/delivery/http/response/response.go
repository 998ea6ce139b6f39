package response

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string            `json:"status"` // "ok" or "degraded"
	Provider     string            `json:"provider"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}
