package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceSource provides the current market price for an asset in the given
// quote currency. Implementations return ErrPriceUnavailable when the upstream
// has no usable price for the asset.
type PriceSource interface {
	CurrentPrice(ctx context.Context, assetID, vsCurrency string) (decimal.Decimal, error)
}

// AssetLister fetches the full remote asset catalog.
type AssetLister interface {
	ListAssets(ctx context.Context) ([]Asset, error)
}

// AssetCatalog serves the known assets, normally from a local cache.
type AssetCatalog interface {
	// Assets returns the catalog. When neither cache nor remote is reachable
	// it returns an empty slice together with ErrCatalogUnavailable; callers
	// may continue with the empty catalog.
	Assets(ctx context.Context) ([]Asset, error)
	// Refresh re-fetches the catalog from the remote listing endpoint. With
	// force=false a present cache is authoritative regardless of age.
	Refresh(ctx context.Context, force bool) ([]Asset, error)
}

// Presenter consumes per-tick results. Implementations render to a console,
// push to dashboard clients, or dispatch alerts; the scheduler does not care.
type Presenter interface {
	// Render is called once per successful tick with the observed sample and
	// the resulting ledger snapshot.
	Render(ctx context.Context, assetID string, snap Snapshot)
	// Notice reports a non-fatal per-tick condition, e.g. a fetch failure.
	Notice(ctx context.Context, assetID, message string)
	// Reset is called when the tracked asset changes; display history tied to
	// the previous asset must be discarded.
	Reset(assetID string)
}

// PriceCache mirrors the latest observed price per asset for external readers.
type PriceCache interface {
	SetPrice(ctx context.Context, assetID string, price decimal.Decimal, ts time.Time) error
	GetPrice(ctx context.Context, assetID string) (decimal.Decimal, time.Time, error)
}
