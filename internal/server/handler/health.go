package handler

import (
	"net/http"
	"time"
)

// HealthHandler answers liveness probes for the watcher process.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a HealthHandler reporting uptime since startedAt.
func NewHealthHandler(startedAt time.Time) *HealthHandler {
	return &HealthHandler{startedAt: startedAt}
}

// HealthCheck reports that the process is alive, for how long, and the
// current server time.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	uptime := int64(time.Since(h.startedAt).Seconds())
	if uptime < 0 {
		uptime = 0
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": uptime,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}
