package ws

import (
	"context"
	"time"

	"github.com/avolkov/gridwatch/internal/domain"
)

// Bridge adapts tick results into hub broadcasts so dashboard clients see
// the same stream the console renders.
type Bridge struct {
	hub *Hub
}

// NewBridge creates a Bridge publishing into hub.
func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub}
}

type pricePayload struct {
	AssetID       string `json:"asset_id"`
	Price         string `json:"price"`
	ObservedAt    string `json:"observed_at"`
	OpenPositions int    `json:"open_positions"`
	Positions     int    `json:"positions"`
}

type positionPayload struct {
	AssetID  string `json:"asset_id"`
	ID       string `json:"id"`
	BuyPrice string `json:"buy_price"`
	Amount   string `json:"amount"`
	Status   string `json:"status"`
}

type noticePayload struct {
	AssetID string `json:"asset_id"`
	Message string `json:"message"`
}

// Render publishes a price event, plus a position event for the position
// opened and each position closed during the tick.
func (b *Bridge) Render(_ context.Context, assetID string, snap domain.Snapshot) {
	b.hub.Publish(ChannelPrices, "price", pricePayload{
		AssetID:       assetID,
		Price:         snap.Sample.Value.String(),
		ObservedAt:    snap.Sample.ObservedAt.UTC().Format(time.RFC3339),
		OpenPositions: snap.OpenCount(),
		Positions:     len(snap.Positions),
	})

	if snap.Opened != nil {
		b.hub.Publish(ChannelPositions, "position_opened", positionFor(assetID, *snap.Opened))
	}
	for _, p := range snap.Closed {
		b.hub.Publish(ChannelPositions, "position_closed", positionFor(assetID, p))
	}
}

// Notice publishes a notice event, e.g. a fetch failure.
func (b *Bridge) Notice(_ context.Context, assetID, message string) {
	b.hub.Publish(ChannelNotices, "notice", noticePayload{
		AssetID: assetID,
		Message: message,
	})
}

// Reset records the new tracked asset and announces it on the status channel.
func (b *Bridge) Reset(assetID string) {
	b.hub.SetTrackedAsset(assetID)
	b.hub.Publish(ChannelStatus, "tracking", map[string]string{
		"asset_id": assetID,
	})
}

func positionFor(assetID string, p domain.Position) positionPayload {
	return positionPayload{
		AssetID:  assetID,
		ID:       p.ID,
		BuyPrice: p.BuyPrice.String(),
		Amount:   p.Amount.String(),
		Status:   string(p.Status),
	}
}

// Compile-time interface check.
var _ domain.Presenter = (*Bridge)(nil)
