package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/avolkov/gridwatch/internal/domain"
)

// AssetSelector switches the tracked asset at runtime.
type AssetSelector interface {
	SelectAsset(id string)
}

// AssetResolver validates asset ids against the catalog.
type AssetResolver interface {
	ByID(ctx context.Context, id string) (domain.Asset, error)
}

// TrackHandler switches which asset the polling loop tracks.
type TrackHandler struct {
	selector AssetSelector
	resolver AssetResolver
	logger   *slog.Logger
}

// NewTrackHandler creates a TrackHandler.
func NewTrackHandler(selector AssetSelector, resolver AssetResolver, logger *slog.Logger) *TrackHandler {
	return &TrackHandler{
		selector: selector,
		resolver: resolver,
		logger:   logger,
	}
}

type trackRequest struct {
	AssetID string `json:"asset_id"`
}

// TrackAsset validates the requested asset against the catalog and switches
// the scheduler to it. Positions recorded so far are kept; only display
// history is discarded.
// POST /api/track
func (h *TrackHandler) TrackAsset(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AssetID == "" {
		writeError(w, http.StatusBadRequest, "asset_id required")
		return
	}

	asset, err := h.resolver.ByID(r.Context(), req.AssetID)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownAsset) {
			writeError(w, http.StatusNotFound, "unknown asset")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: track asset failed",
			slog.String("asset", req.AssetID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to resolve asset")
		return
	}

	h.selector.SelectAsset(asset.ID)
	h.logger.InfoContext(r.Context(), "handler: tracked asset switched",
		slog.String("asset", asset.ID),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"tracking": asset,
	})
}
