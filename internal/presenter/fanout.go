package presenter

import (
	"context"

	"github.com/avolkov/gridwatch/internal/domain"
)

// Fanout forwards every presenter call to an ordered list of presenters.
// It lets the scheduler stay ignorant of how many consumers exist (console,
// dashboard, alerts).
type Fanout struct {
	presenters []domain.Presenter
}

// NewFanout creates a Fanout over the given presenters. Nil entries are
// skipped so callers can pass optional presenters unconditionally.
func NewFanout(presenters ...domain.Presenter) *Fanout {
	kept := make([]domain.Presenter, 0, len(presenters))
	for _, p := range presenters {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &Fanout{presenters: kept}
}

// Render forwards to all presenters in order.
func (f *Fanout) Render(ctx context.Context, assetID string, snap domain.Snapshot) {
	for _, p := range f.presenters {
		p.Render(ctx, assetID, snap)
	}
}

// Notice forwards to all presenters in order.
func (f *Fanout) Notice(ctx context.Context, assetID, message string) {
	for _, p := range f.presenters {
		p.Notice(ctx, assetID, message)
	}
}

// Reset forwards to all presenters in order.
func (f *Fanout) Reset(assetID string) {
	for _, p := range f.presenters {
		p.Reset(assetID)
	}
}

// Compile-time interface check.
var _ domain.Presenter = (*Fanout)(nil)
