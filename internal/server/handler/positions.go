package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/avolkov/gridwatch/internal/domain"
)

// PositionSource provides the current position list.
type PositionSource interface {
	Positions() []domain.Position
}

// PositionHandler serves the position list.
type PositionHandler struct {
	source PositionSource
	logger *slog.Logger
}

// NewPositionHandler creates a PositionHandler with the given source and logger.
func NewPositionHandler(source PositionSource, logger *slog.Logger) *PositionHandler {
	return &PositionHandler{
		source: source,
		logger: logger,
	}
}

type positionView struct {
	ID       string  `json:"id"`
	BuyPrice string  `json:"buy_price"`
	Amount   string  `json:"amount"`
	Status   string  `json:"status"`
	OpenedAt string  `json:"opened_at"`
	ClosedAt *string `json:"closed_at,omitempty"`
}

type listPositionsResponse struct {
	Positions []positionView `json:"positions"`
	Open      int            `json:"open"`
}

// ListPositions returns every position in chronological buy order, with
// ?status=open or ?status=closed narrowing the list.
// GET /api/positions
func (h *PositionHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", "open", "closed":
	default:
		writeError(w, http.StatusBadRequest, "status must be open or closed")
		return
	}

	open := 0
	views := make([]positionView, 0)
	for _, p := range h.source.Positions() {
		if p.IsOpen() {
			open++
		}
		if status == "open" && !p.IsOpen() {
			continue
		}
		if status == "closed" && p.IsOpen() {
			continue
		}
		views = append(views, viewOf(p))
	}

	writeJSON(w, http.StatusOK, listPositionsResponse{Positions: views, Open: open})
}

func viewOf(p domain.Position) positionView {
	v := positionView{
		ID:       p.ID,
		BuyPrice: p.BuyPrice.String(),
		Amount:   p.Amount.String(),
		Status:   string(p.Status),
		OpenedAt: p.OpenedAt.UTC().Format(time.RFC3339),
	}
	if p.ClosedAt != nil {
		closed := p.ClosedAt.UTC().Format(time.RFC3339)
		v.ClosedAt = &closed
	}
	return v
}
