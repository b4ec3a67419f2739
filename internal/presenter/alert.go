package presenter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avolkov/gridwatch/internal/domain"
	"github.com/avolkov/gridwatch/internal/notify"
)

// Alerts bridges tick results to the notification channels: one alert per
// opened position, one per closed position, and one per fetch failure. Event
// filtering is the Notifier's job.
type Alerts struct {
	notifier *notify.Notifier
	logger   *slog.Logger
}

// NewAlerts creates an Alerts presenter on top of the given notifier.
func NewAlerts(notifier *notify.Notifier, logger *slog.Logger) *Alerts {
	return &Alerts{
		notifier: notifier,
		logger:   logger.With(slog.String("component", "alerts")),
	}
}

// Render dispatches alerts for the snapshot's opened and closed positions.
func (a *Alerts) Render(ctx context.Context, assetID string, snap domain.Snapshot) {
	if snap.Opened != nil {
		a.send(ctx, notify.EventPositionOpened,
			fmt.Sprintf("Position opened: %s", assetID),
			fmt.Sprintf("bought %s at %s", snap.Opened.Amount, snap.Opened.BuyPrice),
		)
	}
	for _, p := range snap.Closed {
		a.send(ctx, notify.EventPositionClosed,
			fmt.Sprintf("Position closed: %s", assetID),
			fmt.Sprintf("sold %s bought at %s, closed at %s", p.Amount, p.BuyPrice, snap.Sample.Value),
		)
	}
}

// Notice dispatches a fetch-failure alert.
func (a *Alerts) Notice(ctx context.Context, assetID, message string) {
	a.send(ctx, notify.EventFetchFailed,
		fmt.Sprintf("Fetch failed: %s", assetID),
		message,
	)
}

// Reset is a no-op; alerts carry no per-asset display state.
func (a *Alerts) Reset(string) {}

func (a *Alerts) send(ctx context.Context, event, title, message string) {
	if err := a.notifier.Notify(ctx, event, title, message); err != nil {
		a.logger.WarnContext(ctx, "alert delivery failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

// Compile-time interface check.
var _ domain.Presenter = (*Alerts)(nil)
