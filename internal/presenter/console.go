// Package presenter renders per-tick ledger snapshots. Implementations are
// deliberately dumb consumers: the scheduler hands them a sample and a
// snapshot and moves on.
package presenter

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/avolkov/gridwatch/internal/domain"
)

// Console prints tick results as human-readable lines, one price line per
// tick plus a line for every position opened or closed. It keeps a sliding
// price history for a simple trend marker, cleared on asset switch.
type Console struct {
	mu         sync.Mutex
	w          io.Writer
	vsCurrency string
	history    *History
}

// NewConsole creates a Console presenter writing to w.
func NewConsole(w io.Writer, vsCurrency string, historyWindow time.Duration) *Console {
	if historyWindow <= 0 {
		historyWindow = 5 * time.Minute
	}
	return &Console{
		w:          w,
		vsCurrency: vsCurrency,
		history:    NewHistory(historyWindow),
	}
}

// Render prints the observed price and any position changes.
func (c *Console) Render(_ context.Context, assetID string, snap domain.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	trend := " "
	if last, ok := c.history.Last(); ok {
		switch {
		case snap.Sample.Value.GreaterThan(last.Price):
			trend = "+"
		case snap.Sample.Value.LessThan(last.Price):
			trend = "-"
		case snap.Sample.Value.Equal(last.Price):
			trend = "="
		}
	}
	c.history.Track(snap.Sample.Value, snap.Sample.ObservedAt)

	fmt.Fprintf(c.w, "[%s] %s %s %s %s (open %d/%d)\n",
		snap.Sample.ObservedAt.Format("15:04:05"),
		assetID,
		snap.Sample.Value,
		c.vsCurrency,
		trend,
		snap.OpenCount(),
		len(snap.Positions),
	)

	if snap.Opened != nil {
		fmt.Fprintf(c.w, "  bought %s at %s\n", snap.Opened.Amount, snap.Opened.BuyPrice)
	}
	for _, p := range snap.Closed {
		fmt.Fprintf(c.w, "  sold %s bought at %s\n", p.Amount, p.BuyPrice)
	}
}

// Notice prints a per-tick warning, e.g. a fetch failure.
func (c *Console) Notice(_ context.Context, assetID, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "! %s: %s\n", assetID, message)
}

// Reset clears the price history for a new tracked asset.
func (c *Console) Reset(assetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history.Clear()
	fmt.Fprintf(c.w, "tracking %s\n", assetID)
}

// Compile-time interface check.
var _ domain.Presenter = (*Console)(nil)
