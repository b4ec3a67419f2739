package presenter

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint records a single price observation at a point in time.
type PricePoint struct {
	Price decimal.Decimal
	Time  time.Time
}

// History maintains a sliding window of recent price observations for the
// currently tracked asset. It backs whatever chart or trend display a
// presenter renders, and is discarded wholesale when the tracked asset
// changes.
type History struct {
	mu         sync.RWMutex
	points     []PricePoint
	windowSize time.Duration
}

// NewHistory creates a History whose window extends windowSize into the past;
// points older than the window are discarded on every Track call.
func NewHistory(windowSize time.Duration) *History {
	return &History{windowSize: windowSize}
}

// Track records a new observation and trims points that have fallen outside
// the sliding window.
func (h *History) Track(price decimal.Decimal, ts time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.points = append(h.points, PricePoint{Price: price, Time: ts})

	cutoff := ts.Add(-h.windowSize)
	i := 0
	for i < len(h.points) && h.points[i].Time.Before(cutoff) {
		i++
	}
	if i > 0 {
		h.points = append([]PricePoint(nil), h.points[i:]...)
	}
}

// Points returns a copy of the observations within the window. The returned
// slice is safe to mutate.
func (h *History) Points() []PricePoint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.points) == 0 {
		return nil
	}
	out := make([]PricePoint, len(h.points))
	copy(out, h.points)
	return out
}

// Last returns the most recent observation and whether one exists.
func (h *History) Last() (PricePoint, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.points) == 0 {
		return PricePoint{}, false
	}
	return h.points[len(h.points)-1], true
}

// Average returns the arithmetic mean of the windowed prices, or zero when
// the window is empty.
func (h *History) Average() decimal.Decimal {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.points) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, p := range h.points {
		sum = sum.Add(p.Price)
	}
	return sum.Div(decimal.NewFromInt(int64(len(h.points))))
}

// Clear discards all observations.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.points = nil
}
