package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avolkov/gridwatch/internal/cache/redis"
	"github.com/avolkov/gridwatch/internal/catalog"
	"github.com/avolkov/gridwatch/internal/config"
	"github.com/avolkov/gridwatch/internal/domain"
	"github.com/avolkov/gridwatch/internal/notify"
	"github.com/avolkov/gridwatch/internal/platform/coingecko"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Market data
	PriceSource domain.PriceSource
	Catalog     *catalog.Service

	// Optional latest-price mirror; nil when Redis is disabled.
	PriceCache domain.PriceCache

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- CoinGecko ---
	gecko := coingecko.NewClient(cfg.CoinGecko.APIHost, cfg.CoinGecko.APIKey, cfg.CoinGecko.Timeout.Duration)
	deps.PriceSource = gecko
	deps.Catalog = catalog.New(cfg.Catalog.CacheFile, gecko, logger)

	// --- Redis (optional latest-price mirror) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.PriceCache = redis.NewPriceCache(redisClient)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
