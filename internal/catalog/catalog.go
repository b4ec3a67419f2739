// Package catalog serves the tradeable asset list, backed by a local JSON
// cache file with a remote listing endpoint as fallback.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/avolkov/gridwatch/internal/domain"
)

// Service loads and caches the asset catalog. A present cache file is
// authoritative regardless of age; there is no freshness policy beyond the
// explicit force flag on Refresh.
type Service struct {
	cacheFile string
	lister    domain.AssetLister
	logger    *slog.Logger

	mu     sync.Mutex
	assets []domain.Asset
	loaded bool
}

// New creates a catalog Service that caches to cacheFile and falls back to
// the given lister on cache miss.
func New(cacheFile string, lister domain.AssetLister, logger *slog.Logger) *Service {
	return &Service{
		cacheFile: cacheFile,
		lister:    lister,
		logger:    logger.With(slog.String("component", "catalog")),
	}
}

// Assets returns the catalog. Resolution order: in-memory copy, cache file,
// remote listing. When nothing can be obtained it returns an empty slice and
// ErrCatalogUnavailable; callers may continue with the empty catalog.
func (s *Service) Assets(ctx context.Context) ([]domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.copyLocked(), nil
	}

	if assets, err := s.readCacheFile(); err == nil {
		s.logger.Info("catalog loaded from cache file",
			slog.String("file", s.cacheFile),
			slog.Int("assets", len(assets)),
		)
		s.assets = assets
		s.loaded = true
		return s.copyLocked(), nil
	} else if !errors.Is(err, os.ErrNotExist) {
		// The file exists but cannot be used. It stays authoritative: we do
		// not fall through to the remote, matching the original behavior.
		s.logger.Warn("catalog cache file unreadable",
			slog.String("file", s.cacheFile),
			slog.String("error", err.Error()),
		)
		return []domain.Asset{}, fmt.Errorf("%w: unreadable cache %s", domain.ErrCatalogUnavailable, s.cacheFile)
	}

	assets, err := s.fetchRemoteLocked(ctx)
	if err != nil {
		s.logger.Warn("catalog fetch failed, continuing with empty catalog",
			slog.String("error", err.Error()),
		)
		return []domain.Asset{}, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return assets, nil
}

// Refresh re-fetches the catalog from the remote endpoint. With force=false a
// usable cache file wins; force=true bypasses it and rewrites the cache.
func (s *Service) Refresh(ctx context.Context, force bool) ([]domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !force {
		if assets, err := s.readCacheFile(); err == nil {
			s.assets = assets
			s.loaded = true
			return s.copyLocked(), nil
		}
	}

	assets, err := s.fetchRemoteLocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return assets, nil
}

// ByID looks up an asset by its identifier.
func (s *Service) ByID(ctx context.Context, id string) (domain.Asset, error) {
	assets, err := s.Assets(ctx)
	if err != nil {
		return domain.Asset{}, err
	}
	for _, a := range assets {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Asset{}, fmt.Errorf("%w: %s", domain.ErrUnknownAsset, id)
}

// ByLabel looks up an asset by its "SYMBOL - Name" display label.
func (s *Service) ByLabel(ctx context.Context, label string) (domain.Asset, error) {
	assets, err := s.Assets(ctx)
	if err != nil {
		return domain.Asset{}, err
	}
	for _, a := range assets {
		if a.Label() == label {
			return a, nil
		}
	}
	return domain.Asset{}, fmt.Errorf("%w: %s", domain.ErrUnknownAsset, label)
}

func (s *Service) readCacheFile() ([]domain.Asset, error) {
	data, err := os.ReadFile(s.cacheFile)
	if err != nil {
		return nil, err
	}
	var assets []domain.Asset
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, fmt.Errorf("decode cache: %w", err)
	}
	return assets, nil
}

// fetchRemoteLocked fetches the catalog from the lister, writes the cache
// file, and memoizes the result. Callers must hold s.mu.
func (s *Service) fetchRemoteLocked(ctx context.Context) ([]domain.Asset, error) {
	s.logger.Info("fetching asset catalog from remote")
	assets, err := s.lister.ListAssets(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(assets); err == nil {
		if err := os.WriteFile(s.cacheFile, data, 0o644); err != nil {
			// A failed cache write is not fatal; the catalog is still usable.
			s.logger.Warn("could not write catalog cache file",
				slog.String("file", s.cacheFile),
				slog.String("error", err.Error()),
			)
		} else {
			s.logger.Info("catalog cached",
				slog.String("file", s.cacheFile),
				slog.Int("assets", len(assets)),
			)
		}
	}

	s.assets = assets
	s.loaded = true
	return s.copyLocked(), nil
}

func (s *Service) copyLocked() []domain.Asset {
	out := make([]domain.Asset, len(s.assets))
	copy(out, s.assets)
	return out
}

// Compile-time interface check.
var _ domain.AssetCatalog = (*Service)(nil)
