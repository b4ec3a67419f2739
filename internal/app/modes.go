package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/avolkov/gridwatch/internal/domain"
	"github.com/avolkov/gridwatch/internal/ledger"
	"github.com/avolkov/gridwatch/internal/presenter"
	"github.com/avolkov/gridwatch/internal/scheduler"
	"github.com/avolkov/gridwatch/internal/server"
	"github.com/avolkov/gridwatch/internal/server/handler"
	"github.com/avolkov/gridwatch/internal/server/ws"
)

// catalogColumns is the column count used when printing the asset catalog in
// console mode.
const catalogColumns = 3

// runtime bundles the per-run objects shared by both modes.
type runtime struct {
	ledger    *ledger.Ledger
	sched     *scheduler.Scheduler
	hub       *ws.Hub
	startedAt time.Time
}

// buildRuntime assembles the ledger, presenter chain and scheduler. The hub
// is only created when the HTTP server is enabled.
func (a *App) buildRuntime(deps *Dependencies) (*runtime, error) {
	led, err := ledger.New(ledger.Config{
		Capital:       decimal.NewFromFloat(a.cfg.Ledger.Capital),
		GridSize:      a.cfg.Ledger.GridSize,
		BuyThreshold:  decimal.NewFromFloat(a.cfg.Ledger.BuyThreshold),
		SellThreshold: decimal.NewFromFloat(a.cfg.Ledger.SellThreshold),
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("app: ledger: %w", err)
	}

	startedAt := time.Now().UTC()
	console := presenter.NewConsole(os.Stdout, a.cfg.CoinGecko.VsCurrency, 5*time.Minute)
	alerts := presenter.NewAlerts(deps.Notifier, a.logger)

	var hub *ws.Hub
	var bridge domain.Presenter
	if a.cfg.Server.Enabled {
		hub = ws.NewHub(a.logger.With(slog.String("component", "ws")), ws.Config{
			Mode:      a.cfg.Mode,
			AssetID:   a.cfg.Scheduler.Asset,
			StartedAt: startedAt,
		})
		bridge = ws.NewBridge(hub)
	}

	sched := scheduler.New(scheduler.Config{
		AssetID:    a.cfg.Scheduler.Asset,
		VsCurrency: a.cfg.CoinGecko.VsCurrency,
		Interval:   a.cfg.Scheduler.Interval(),
	}, deps.PriceSource, led, presenter.NewFanout(console, alerts, bridge), deps.PriceCache, a.logger)

	return &runtime{ledger: led, sched: sched, hub: hub, startedAt: startedAt}, nil
}

// startServer registers the HTTP API over the running scheduler and adds the
// server and hub goroutines to the group.
func (a *App) startServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, rt *runtime) {
	handlers := server.Handlers{
		Health: handler.NewHealthHandler(rt.startedAt),
		Status: handler.NewStatusHandler(a.cfg.Mode, rt.sched, handler.GridInfo{
			Capital:  rt.ledger.Capital().String(),
			GridSize: rt.ledger.GridSize(),
			PartSize: rt.ledger.PartSize().String(),
		}, rt.startedAt),
		Positions: handler.NewPositionHandler(rt.sched, a.logger),
		Assets:    handler.NewAssetHandler(deps.Catalog, a.logger),
		Track:     handler.NewTrackHandler(rt.sched, deps.Catalog, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, handlers, rt.hub, a.logger)

	g.Go(func() error {
		return rt.hub.Run(ctx)
	})
	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// WatchMode runs the headless polling loop, optionally alongside the HTTP +
// WebSocket API when the server is enabled.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting watch mode",
		slog.String("asset", a.cfg.Scheduler.Asset),
	)

	// The catalog is warmed up front so the first fetch failure surfaces at
	// startup rather than mid-run. An unavailable catalog is not fatal.
	if _, err := deps.Catalog.Assets(ctx); err != nil {
		a.logger.WarnContext(ctx, "asset catalog unavailable, continuing without it",
			slog.String("error", err.Error()),
		)
	}

	rt, err := a.buildRuntime(deps)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return rt.sched.Run(ctx)
	})

	if a.cfg.Server.Enabled {
		a.startServer(ctx, g, deps, rt)
	}

	return normalizeShutdown(g.Wait())
}

// ConsoleMode prints the asset catalog, waits for the first selection, then
// runs the polling loop while reading further selections from stdin. Typing
// an asset label or id switches the tracked asset without resetting recorded
// positions; "exit" quits.
func (a *App) ConsoleMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting console mode")

	assets, err := deps.Catalog.Assets(ctx)
	if err != nil && !errors.Is(err, domain.ErrCatalogUnavailable) {
		return fmt.Errorf("app: load catalog: %w", err)
	}
	if len(assets) == 0 {
		fmt.Println("no assets available; check the catalog cache file or network and retry")
		return nil
	}

	printCatalog(os.Stdout, assets)

	scanner := bufio.NewScanner(os.Stdin)

	// Polling starts only after the user picks an asset; any configured
	// default applies to watch mode, not here.
	asset, ok := a.promptSelection(ctx, deps, scanner)
	if !ok {
		return nil
	}
	a.cfg.Scheduler.Asset = asset.ID

	rt, err := a.buildRuntime(deps)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return rt.sched.Run(ctx)
	})

	if a.cfg.Server.Enabled {
		a.startServer(ctx, g, deps, rt)
	}

	// Not part of the group: Scan blocks until the next line even after the
	// context is cancelled, and must not hold up shutdown.
	go a.readSelections(ctx, deps, rt, scanner, cancel)

	return normalizeShutdown(g.Wait())
}

// readSelections consumes stdin lines until "exit" or EOF, switching the
// tracked asset on every recognized selection.
func (a *App) readSelections(ctx context.Context, deps *Dependencies, rt *runtime, scanner *bufio.Scanner, cancel context.CancelFunc) {
	for {
		asset, ok := a.promptSelection(ctx, deps, scanner)
		if !ok {
			cancel()
			return
		}
		rt.sched.SelectAsset(asset.ID)
	}
}

// promptSelection reads stdin lines until a recognized asset label or id is
// entered. It returns false on "exit", EOF or a cancelled context.
func (a *App) promptSelection(ctx context.Context, deps *Dependencies, scanner *bufio.Scanner) (domain.Asset, bool) {
	fmt.Println(`select an asset by label (e.g. "BTC - Bitcoin") or id, "exit" to quit`)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return domain.Asset{}, false
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") {
			return domain.Asset{}, false
		}

		asset, err := deps.Catalog.ByLabel(ctx, line)
		if errors.Is(err, domain.ErrUnknownAsset) {
			asset, err = deps.Catalog.ByID(ctx, strings.ToLower(line))
		}
		if err != nil {
			fmt.Printf("unknown asset %q\n", line)
			continue
		}
		return asset, true
	}

	if err := scanner.Err(); err != nil {
		a.logger.Warn("stdin read failed", slog.String("error", err.Error()))
	}
	// EOF on stdin ends the run, matching "exit".
	return domain.Asset{}, false
}

// printCatalog renders the asset labels in fixed-width columns. Labels run
// down each column before wrapping to the next, so alphabetical input reads
// top to bottom.
func printCatalog(w io.Writer, assets []domain.Asset) {
	if len(assets) == 0 {
		return
	}

	width := 0
	labels := make([]string, len(assets))
	for i, a := range assets {
		labels[i] = a.Label()
		if len(labels[i]) > width {
			width = len(labels[i])
		}
	}

	rows := (len(labels) + catalogColumns - 1) / catalogColumns
	for row := 0; row < rows; row++ {
		for col := 0; col < catalogColumns; col++ {
			i := row + col*rows
			if i >= len(labels) {
				continue
			}
			fmt.Fprintf(w, "%-*s", width+2, labels[i])
		}
		fmt.Fprintln(w)
	}
}

// normalizeShutdown maps a context-cancelled group result to a clean exit.
func normalizeShutdown(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
