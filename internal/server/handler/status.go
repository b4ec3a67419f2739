package handler

import (
	"net/http"
	"time"
)

// StatusSource exposes the runtime state the status endpoint reports.
type StatusSource interface {
	AssetID() string
}

// GridInfo holds the immutable grid parameters reported alongside the
// runtime state.
type GridInfo struct {
	Capital  string `json:"capital"`
	GridSize int    `json:"grid_size"`
	PartSize string `json:"part_size"`
}

// StatusHandler serves the backend status for the dashboard.
type StatusHandler struct {
	mode      string
	source    StatusSource
	grid      GridInfo
	startedAt time.Time
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(mode string, source StatusSource, grid GridInfo, startedAt time.Time) *StatusHandler {
	return &StatusHandler{
		mode:      mode,
		source:    source,
		grid:      grid,
		startedAt: startedAt,
	}
}

// GetStatus responds with the current mode, tracked asset, grid parameters
// and uptime.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	uptime := int64(time.Since(h.startedAt).Seconds())
	if uptime < 0 {
		uptime = 0
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":           h.mode,
		"tracked_asset":  h.source.AssetID(),
		"grid":           h.grid,
		"uptime_seconds": uptime,
	})
}
