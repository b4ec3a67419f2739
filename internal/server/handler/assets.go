package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/avolkov/gridwatch/internal/domain"
)

// AssetHandler serves the asset catalog.
type AssetHandler struct {
	catalog domain.AssetCatalog
	logger  *slog.Logger
}

// NewAssetHandler creates an AssetHandler with the given catalog and logger.
func NewAssetHandler(catalog domain.AssetCatalog, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{
		catalog: catalog,
		logger:  logger,
	}
}

type listAssetsResponse struct {
	Assets []domain.Asset `json:"assets"`
	Total  int            `json:"total"`
}

// ListAssets returns the asset catalog, optionally filtered with ?q= matched
// case-insensitively against id, symbol and name.
// GET /api/assets
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.catalog.Assets(r.Context())
	if err != nil {
		if !errors.Is(err, domain.ErrCatalogUnavailable) {
			h.logger.ErrorContext(r.Context(), "handler: list assets failed",
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to list assets")
			return
		}
		// An unavailable catalog serves as empty, matching startup behavior.
		assets = []domain.Asset{}
	}

	if q := strings.ToLower(r.URL.Query().Get("q")); q != "" {
		filtered := make([]domain.Asset, 0)
		for _, a := range assets {
			if strings.Contains(strings.ToLower(a.ID), q) ||
				strings.Contains(strings.ToLower(a.Symbol), q) ||
				strings.Contains(strings.ToLower(a.Name), q) {
				filtered = append(filtered, a)
			}
		}
		assets = filtered
	}

	writeJSON(w, http.StatusOK, listAssetsResponse{Assets: assets, Total: len(assets)})
}

// RefreshAssets re-fetches the catalog from the remote listing endpoint and
// rewrites the cache file.
// POST /api/assets/refresh
func (h *AssetHandler) RefreshAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.catalog.Refresh(r.Context(), true)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: refresh assets failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to refresh assets")
		return
	}
	writeJSON(w, http.StatusOK, listAssetsResponse{Assets: assets, Total: len(assets)})
}
