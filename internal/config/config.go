// Package config defines the top-level configuration for gridwatch and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by GRIDWATCH_* environment variables.
type Config struct {
	CoinGecko CoinGeckoConfig `toml:"coingecko"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Ledger    LedgerConfig    `toml:"ledger"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Redis     RedisConfig     `toml:"redis"`
	Server    ServerConfig    `toml:"server"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// CoinGeckoConfig holds CoinGecko API parameters.
type CoinGeckoConfig struct {
	APIHost    string   `toml:"api_host"`
	APIKey     string   `toml:"api_key"`
	VsCurrency string   `toml:"vs_currency"`
	Timeout    duration `toml:"timeout"`
}

// CatalogConfig holds asset catalog cache parameters.
type CatalogConfig struct {
	CacheFile string `toml:"cache_file"`
}

// LedgerConfig holds the grid parameters.
type LedgerConfig struct {
	Capital       float64 `toml:"capital"`
	GridSize      int     `toml:"grid_size"`
	BuyThreshold  float64 `toml:"buy_threshold"`
	SellThreshold float64 `toml:"sell_threshold"`
}

// SchedulerConfig holds the polling loop parameters.
type SchedulerConfig struct {
	Asset               string `toml:"asset"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
}

// Interval returns the poll interval as a time.Duration.
func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

// RedisConfig holds parameters for the optional latest-price mirror cache.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// ServerConfig holds dashboard HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "10s", "1m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "10s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		CoinGecko: CoinGeckoConfig{
			APIHost:    "https://api.coingecko.com",
			VsCurrency: "usd",
			Timeout:    duration{10 * time.Second},
		},
		Catalog: CatalogConfig{
			CacheFile: "list.json",
		},
		Ledger: LedgerConfig{
			Capital:       100,
			GridSize:      10,
			BuyThreshold:  0.02,
			SellThreshold: 0.02,
		},
		Scheduler: SchedulerConfig{
			Asset:               "bitcoin",
			PollIntervalSeconds: 10,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   10,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Server: ServerConfig{
			Enabled:     false,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Notify: NotifyConfig{
			Events: []string{"position_opened", "position_closed", "fetch_failed"},
		},
		Mode:     "watch",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"watch":   true,
	"console": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: watch, console)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.CoinGecko.APIHost == "" {
		errs = append(errs, "coingecko: api_host must not be empty")
	}
	if c.CoinGecko.VsCurrency == "" {
		errs = append(errs, "coingecko: vs_currency must not be empty")
	}

	if c.Catalog.CacheFile == "" {
		errs = append(errs, "catalog: cache_file must not be empty")
	}

	if c.Ledger.Capital <= 0 {
		errs = append(errs, fmt.Sprintf("ledger: capital must be positive, got %v", c.Ledger.Capital))
	}
	if c.Ledger.GridSize <= 0 {
		errs = append(errs, fmt.Sprintf("ledger: grid_size must be positive, got %d", c.Ledger.GridSize))
	}
	if c.Ledger.BuyThreshold <= 0 || c.Ledger.BuyThreshold >= 1 {
		errs = append(errs, fmt.Sprintf("ledger: buy_threshold must be in (0, 1), got %v", c.Ledger.BuyThreshold))
	}
	if c.Ledger.SellThreshold <= 0 || c.Ledger.SellThreshold >= 1 {
		errs = append(errs, fmt.Sprintf("ledger: sell_threshold must be in (0, 1), got %v", c.Ledger.SellThreshold))
	}

	if c.Scheduler.PollIntervalSeconds <= 0 {
		errs = append(errs, fmt.Sprintf("scheduler: poll_interval_seconds must be positive, got %d", c.Scheduler.PollIntervalSeconds))
	}
	if strings.ToLower(c.Mode) == "watch" && c.Scheduler.Asset == "" {
		errs = append(errs, "scheduler: asset is required for watch mode")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis: addr is required when redis is enabled")
	}

	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server: port must be in (0, 65535], got %d", c.Server.Port))
	}

	// Telegram credentials must be set together, or not at all.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
