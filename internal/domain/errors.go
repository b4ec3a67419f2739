package domain

import "errors"

var (
	ErrInvalidPrice       = errors.New("invalid price")
	ErrPriceUnavailable   = errors.New("price unavailable")
	ErrCatalogUnavailable = errors.New("asset catalog unavailable")
	ErrUnknownAsset       = errors.New("unknown asset")
	ErrNotFound           = errors.New("not found")
	ErrRateLimited        = errors.New("rate limited")
)
