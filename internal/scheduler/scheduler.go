// Package scheduler drives the fixed-interval fetch-evaluate-present loop for
// one tracked asset.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avolkov/gridwatch/internal/domain"
	"github.com/avolkov/gridwatch/internal/ledger"
)

// Config holds the scheduler parameters.
type Config struct {
	// AssetID is the initially tracked asset.
	AssetID string
	// VsCurrency is the quote currency for price fetches.
	VsCurrency string
	// Interval is the delay between ticks.
	Interval time.Duration
}

// Scheduler runs one tick at a time: fetch a price for the tracked asset,
// feed it to the ledger, hand the snapshot to the presenter. Ticks never
// interleave; a slow fetch delays the tick rather than overlapping it.
//
// The ledger is shared across asset switches on purpose: SelectAsset resets
// presenter display state but keeps every position, preserving the original
// single-ledger behavior. Callers that want per-asset books must construct a
// new Scheduler with a fresh ledger.
type Scheduler struct {
	source    domain.PriceSource
	ledger    *ledger.Ledger
	presenter domain.Presenter
	prices    domain.PriceCache // optional mirror, may be nil

	vsCurrency string
	interval   time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	assetID string

	// tickMu serializes ledger access between Tick and Positions.
	tickMu sync.Mutex
}

// New creates a Scheduler. prices may be nil to disable the latest-price
// mirror.
func New(cfg Config, source domain.PriceSource, led *ledger.Ledger, presenter domain.Presenter, prices domain.PriceCache, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		source:     source,
		ledger:     led,
		presenter:  presenter,
		prices:     prices,
		vsCurrency: cfg.VsCurrency,
		interval:   cfg.Interval,
		assetID:    cfg.AssetID,
		logger:     logger.With(slog.String("component", "scheduler")),
	}
}

// SelectAsset switches the tracked asset. The switch takes effect on the next
// tick. Display history for the previous asset is discarded via the
// presenter; ledger positions are NOT reset (caller-visible quirk, see
// package doc).
func (s *Scheduler) SelectAsset(id string) {
	s.mu.Lock()
	prev := s.assetID
	s.assetID = id
	s.mu.Unlock()

	if prev != id {
		s.logger.Info("tracked asset changed",
			slog.String("from", prev),
			slog.String("to", id),
		)
	}
	s.presenter.Reset(id)
}

// AssetID returns the currently tracked asset.
func (s *Scheduler) AssetID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assetID
}

// Positions returns a copy of the ledger's position list. Unlike the ledger
// itself this is safe to call while the scheduler is running, e.g. from an
// HTTP handler.
func (s *Scheduler) Positions() []domain.Position {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	return s.ledger.Positions()
}

// Tick runs one fetch-evaluate-present cycle. A fetch failure skips the
// ledger update, surfaces a notice through the presenter, and returns the
// fetch error; the caller's loop is expected to continue.
func (s *Scheduler) Tick(ctx context.Context) error {
	asset := s.AssetID()

	price, err := s.source.CurrentPrice(ctx, asset, s.vsCurrency)
	if err != nil {
		s.presenter.Notice(ctx, asset, "price unavailable")
		return fmt.Errorf("scheduler: fetch %s: %w", asset, err)
	}

	sample := domain.PriceSample{Value: price, ObservedAt: time.Now().UTC()}

	if s.prices != nil {
		if err := s.prices.SetPrice(ctx, asset, price, sample.ObservedAt); err != nil {
			// The mirror is best effort; the tick proceeds.
			s.logger.Warn("price cache update failed",
				slog.String("asset", asset),
				slog.String("error", err.Error()),
			)
		}
	}

	s.tickMu.Lock()
	snap, err := s.ledger.OnPrice(sample)
	s.tickMu.Unlock()
	if err != nil {
		s.presenter.Notice(ctx, asset, "rejected price sample")
		return fmt.Errorf("scheduler: ledger update %s: %w", asset, err)
	}

	s.presenter.Render(ctx, asset, snap)
	return nil
}

// Run ticks immediately and then on every interval until the context is
// cancelled. Tick errors are logged and never stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started",
		slog.String("asset", s.AssetID()),
		slog.Duration("interval", s.interval),
	)
	defer s.logger.Info("scheduler stopped")

	s.presenter.Reset(s.AssetID())

	if err := s.Tick(ctx); err != nil {
		s.logger.Warn("tick failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.logger.Warn("tick failed", slog.String("error", err.Error()))
			}
		}
	}
}
