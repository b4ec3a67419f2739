package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/gridwatch/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePositionSource struct {
	positions []domain.Position
}

func (f *fakePositionSource) Positions() []domain.Position { return f.positions }

type fakeSelector struct {
	selected []string
}

func (f *fakeSelector) SelectAsset(id string) { f.selected = append(f.selected, id) }

type fakeResolver struct {
	known map[string]domain.Asset
}

func (f *fakeResolver) ByID(_ context.Context, id string) (domain.Asset, error) {
	a, ok := f.known[id]
	if !ok {
		return domain.Asset{}, domain.ErrUnknownAsset
	}
	return a, nil
}

type fakeCatalog struct {
	assets []domain.Asset
	err    error
}

func (f *fakeCatalog) Assets(context.Context) ([]domain.Asset, error) {
	return f.assets, f.err
}

func (f *fakeCatalog) Refresh(context.Context, bool) ([]domain.Asset, error) {
	return f.assets, f.err
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealthCheck(t *testing.T) {
	h := NewHealthHandler(time.Now().Add(-90 * time.Second))
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	decodeBody(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.GreaterOrEqual(t, body["uptime_seconds"], float64(90))
}

func TestListPositions(t *testing.T) {
	closedAt := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	src := &fakePositionSource{positions: []domain.Position{
		{
			ID:       "a",
			BuyPrice: decimal.NewFromInt(100),
			Amount:   decimal.NewFromInt(10),
			Status:   domain.PositionStatusOpen,
			OpenedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:       "b",
			BuyPrice: decimal.NewFromInt(95),
			Amount:   decimal.NewFromInt(10),
			Status:   domain.PositionStatusClosed,
			OpenedAt: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
			ClosedAt: &closedAt,
		},
	}}
	h := NewPositionHandler(src, testLogger())

	rec := httptest.NewRecorder()
	h.ListPositions(rec, httptest.NewRequest(http.MethodGet, "/api/positions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body listPositionsResponse
	decodeBody(t, rec, &body)
	require.Len(t, body.Positions, 2)
	assert.Equal(t, 1, body.Open)
	assert.Equal(t, "100", body.Positions[0].BuyPrice)
	assert.Nil(t, body.Positions[0].ClosedAt)
	require.NotNil(t, body.Positions[1].ClosedAt)
	assert.Equal(t, "2025-06-01T13:00:00Z", *body.Positions[1].ClosedAt)
}

func TestListPositionsStatusFilter(t *testing.T) {
	src := &fakePositionSource{positions: []domain.Position{
		{ID: "a", Status: domain.PositionStatusOpen},
		{ID: "b", Status: domain.PositionStatusClosed},
	}}
	h := NewPositionHandler(src, testLogger())

	rec := httptest.NewRecorder()
	h.ListPositions(rec, httptest.NewRequest(http.MethodGet, "/api/positions?status=open", nil))
	var body listPositionsResponse
	decodeBody(t, rec, &body)
	require.Len(t, body.Positions, 1)
	assert.Equal(t, "a", body.Positions[0].ID)

	rec = httptest.NewRecorder()
	h.ListPositions(rec, httptest.NewRequest(http.MethodGet, "/api/positions?status=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAssetsFilter(t *testing.T) {
	cat := &fakeCatalog{assets: []domain.Asset{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum"},
	}}
	h := NewAssetHandler(cat, testLogger())

	rec := httptest.NewRecorder()
	h.ListAssets(rec, httptest.NewRequest(http.MethodGet, "/api/assets?q=ETH", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body listAssetsResponse
	decodeBody(t, rec, &body)
	require.Equal(t, 1, body.Total)
	assert.Equal(t, "ethereum", body.Assets[0].ID)
}

func TestListAssetsUnavailableCatalogServesEmpty(t *testing.T) {
	cat := &fakeCatalog{err: domain.ErrCatalogUnavailable}
	h := NewAssetHandler(cat, testLogger())

	rec := httptest.NewRecorder()
	h.ListAssets(rec, httptest.NewRequest(http.MethodGet, "/api/assets", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body listAssetsResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, 0, body.Total)
}

func TestTrackAsset(t *testing.T) {
	sel := &fakeSelector{}
	res := &fakeResolver{known: map[string]domain.Asset{
		"ethereum": {ID: "ethereum", Symbol: "eth", Name: "Ethereum"},
	}}
	h := NewTrackHandler(sel, res, testLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/track", strings.NewReader(`{"asset_id":"ethereum"}`))
	h.TrackAsset(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ethereum"}, sel.selected)
}

func TestTrackAssetRejectsUnknownAndBadInput(t *testing.T) {
	sel := &fakeSelector{}
	res := &fakeResolver{known: map[string]domain.Asset{}}
	h := NewTrackHandler(sel, res, testLogger())

	rec := httptest.NewRecorder()
	h.TrackAsset(rec, httptest.NewRequest(http.MethodPost, "/api/track", strings.NewReader(`{"asset_id":"dogecoin"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.TrackAsset(rec, httptest.NewRequest(http.MethodPost, "/api/track", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.TrackAsset(rec, httptest.NewRequest(http.MethodPost, "/api/track", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, sel.selected)
}
