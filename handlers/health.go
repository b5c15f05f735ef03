package handlers

import "net/http"

type HealthHandler struct {
	// Configured reports whether the upstream credential is present.
	Configured func() bool
}

func NewHealthHandler(configured func() bool) *HealthHandler {
	return &HealthHandler{Configured: configured}
}

// Health reports liveness. The process stays up without a credential, so
// that state is surfaced here rather than failing the check.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if h.Configured != nil {
		resp["upstreamConfigured"] = h.Configured()
	}
	writeJSON(w, http.StatusOK, resp)
}
