// Package ledger implements the grid-trading ledger: capital split into a
// fixed number of equal slices, one slice deployed on each sufficient price
// drop and released on sufficient recovery.
package ledger

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avolkov/gridwatch/internal/domain"
)

// Config holds the grid parameters. Capital and GridSize are process-wide
// constants for the lifetime of the ledger.
type Config struct {
	Capital       decimal.Decimal
	GridSize      int
	BuyThreshold  decimal.Decimal // fractional drop vs the last buy, e.g. 0.02
	SellThreshold decimal.Decimal // fractional rise vs a position's buy, e.g. 0.02
}

// Ledger owns the position list and applies the buy/sell rules on each new
// price observation. It performs no I/O; callers feed it samples and hand the
// returned snapshots to whatever renders or records them.
//
// The ledger is not safe for concurrent use. The scheduler guarantees one
// tick at a time, which is the only intended access pattern.
type Ledger struct {
	capital       decimal.Decimal
	gridSize      int
	partSize      decimal.Decimal
	buyThreshold  decimal.Decimal
	sellThreshold decimal.Decimal
	positions     []domain.Position
	logger        *slog.Logger
}

// New creates a Ledger from the given grid parameters.
func New(cfg Config, logger *slog.Logger) (*Ledger, error) {
	if cfg.GridSize <= 0 {
		return nil, fmt.Errorf("ledger: grid size must be positive, got %d", cfg.GridSize)
	}
	if !cfg.Capital.IsPositive() {
		return nil, fmt.Errorf("ledger: capital must be positive, got %s", cfg.Capital)
	}
	if !cfg.BuyThreshold.IsPositive() || !cfg.SellThreshold.IsPositive() {
		return nil, fmt.Errorf("ledger: thresholds must be positive")
	}
	return &Ledger{
		capital:       cfg.Capital,
		gridSize:      cfg.GridSize,
		partSize:      cfg.Capital.Div(decimal.NewFromInt(int64(cfg.GridSize))),
		buyThreshold:  cfg.BuyThreshold,
		sellThreshold: cfg.SellThreshold,
		logger:        logger.With(slog.String("component", "ledger")),
	}, nil
}

// OnPrice applies the buy and sell rules to one price observation and returns
// a snapshot of what changed plus the full position list.
//
// Buy rule: at most one new position per call, and only while fewer than
// gridSize positions have ever been opened. The reference price is the most
// recently appended position's buy price regardless of its status; the first
// position opens unconditionally. Closed positions keep their slot forever, so
// a fully cycled grid stops buying permanently.
//
// Sell rule: every open position whose buy price the sample strictly exceeds
// by more than the sell threshold is closed. Both comparisons are strict;
// equality triggers nothing.
func (l *Ledger) OnPrice(sample domain.PriceSample) (domain.Snapshot, error) {
	price := sample.Value
	if !price.IsPositive() {
		return domain.Snapshot{}, fmt.Errorf("%w: %s", domain.ErrInvalidPrice, price)
	}

	snap := domain.Snapshot{Sample: sample}

	if l.shouldBuy(price) {
		pos := domain.Position{
			ID:       uuid.NewString(),
			BuyPrice: price,
			Amount:   l.partSize,
			Status:   domain.PositionStatusOpen,
			OpenedAt: sample.ObservedAt,
		}
		l.positions = append(l.positions, pos)
		snap.Opened = &pos
		l.logger.Info("position opened",
			slog.String("buy_price", price.String()),
			slog.String("amount", l.partSize.String()),
			slog.Int("positions", len(l.positions)),
		)
	}

	one := decimal.NewFromInt(1)
	for i := range l.positions {
		p := &l.positions[i]
		if p.Status != domain.PositionStatusOpen {
			continue
		}
		if price.GreaterThan(p.BuyPrice.Mul(one.Add(l.sellThreshold))) {
			p.Status = domain.PositionStatusClosed
			closedAt := sample.ObservedAt
			p.ClosedAt = &closedAt
			snap.Closed = append(snap.Closed, *p)
			l.logger.Info("position closed",
				slog.String("buy_price", p.BuyPrice.String()),
				slog.String("sell_price", price.String()),
				slog.String("amount", p.Amount.String()),
			)
		}
	}

	snap.Positions = l.Positions()
	return snap, nil
}

// shouldBuy reports whether a new position opens at the given price. The
// comparison uses the last appended position, not a minimum or average across
// the grid: each successive buy must undercut the immediately preceding one.
func (l *Ledger) shouldBuy(price decimal.Decimal) bool {
	if len(l.positions) >= l.gridSize {
		return false
	}
	if len(l.positions) == 0 {
		return true
	}
	last := l.positions[len(l.positions)-1]
	limit := last.BuyPrice.Mul(decimal.NewFromInt(1).Sub(l.buyThreshold))
	return price.LessThan(limit)
}

// Positions returns a copy of the position list in chronological buy order.
func (l *Ledger) Positions() []domain.Position {
	out := make([]domain.Position, len(l.positions))
	copy(out, l.positions)
	return out
}

// PartSize returns the fixed amount of one grid slice, capital / gridSize.
func (l *Ledger) PartSize() decimal.Decimal {
	return l.partSize
}

// Capital returns the total tracked capital.
func (l *Ledger) Capital() decimal.Decimal {
	return l.capital
}

// GridSize returns the number of capital partitions.
func (l *Ledger) GridSize() int {
	return l.gridSize
}
