package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies GRIDWATCH_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
//
// A missing config file is not an error: the defaults plus environment
// overrides are returned, so the binary runs without any file at all.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known GRIDWATCH_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── CoinGecko ──
	setStr(&cfg.CoinGecko.APIHost, "GRIDWATCH_COINGECKO_API_HOST")
	setStr(&cfg.CoinGecko.APIKey, "GRIDWATCH_COINGECKO_API_KEY")
	setStr(&cfg.CoinGecko.APIKey, "API_KEY") // compatibility alias for the original .env
	setStr(&cfg.CoinGecko.VsCurrency, "GRIDWATCH_COINGECKO_VS_CURRENCY")
	setDuration(&cfg.CoinGecko.Timeout, "GRIDWATCH_COINGECKO_TIMEOUT")

	// ── Catalog ──
	setStr(&cfg.Catalog.CacheFile, "GRIDWATCH_CATALOG_CACHE_FILE")

	// ── Ledger ──
	setFloat64(&cfg.Ledger.Capital, "GRIDWATCH_LEDGER_CAPITAL")
	setInt(&cfg.Ledger.GridSize, "GRIDWATCH_LEDGER_GRID_SIZE")
	setFloat64(&cfg.Ledger.BuyThreshold, "GRIDWATCH_LEDGER_BUY_THRESHOLD")
	setFloat64(&cfg.Ledger.SellThreshold, "GRIDWATCH_LEDGER_SELL_THRESHOLD")

	// ── Scheduler ──
	setStr(&cfg.Scheduler.Asset, "GRIDWATCH_SCHEDULER_ASSET")
	setInt(&cfg.Scheduler.PollIntervalSeconds, "GRIDWATCH_SCHEDULER_POLL_INTERVAL_SECONDS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "GRIDWATCH_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "GRIDWATCH_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "GRIDWATCH_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "GRIDWATCH_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "GRIDWATCH_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "GRIDWATCH_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "GRIDWATCH_REDIS_TLS_ENABLED")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "GRIDWATCH_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "GRIDWATCH_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "GRIDWATCH_SERVER_CORS_ORIGINS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "GRIDWATCH_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "GRIDWATCH_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "GRIDWATCH_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "GRIDWATCH_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "GRIDWATCH_MODE")
	setStr(&cfg.LogLevel, "GRIDWATCH_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
