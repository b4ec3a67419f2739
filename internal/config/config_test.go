package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Scheduler.PollIntervalSeconds)
	assert.Equal(t, 10*time.Second, cfg.Scheduler.Interval())
	assert.Equal(t, float64(100), cfg.Ledger.Capital)
	assert.Equal(t, 10, cfg.Ledger.GridSize)
	assert.Equal(t, "list.json", cfg.Catalog.CacheFile)
	assert.Equal(t, "usd", cfg.CoinGecko.VsCurrency)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "console"
log_level = "debug"

[ledger]
capital = 250.0
grid_size = 5

[scheduler]
asset = "ethereum"
poll_interval_seconds = 30

[coingecko]
timeout = "5s"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "console", cfg.Mode)
	assert.Equal(t, float64(250), cfg.Ledger.Capital)
	assert.Equal(t, 5, cfg.Ledger.GridSize)
	// Untouched sections keep their defaults.
	assert.Equal(t, 0.02, cfg.Ledger.BuyThreshold)
	assert.Equal(t, "ethereum", cfg.Scheduler.Asset)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.Interval())
	assert.Equal(t, 5*time.Second, cfg.CoinGecko.Timeout.Duration)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "watch", cfg.Mode)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GRIDWATCH_SCHEDULER_ASSET", "dogecoin")
	t.Setenv("GRIDWATCH_LEDGER_GRID_SIZE", "20")
	t.Setenv("GRIDWATCH_REDIS_ENABLED", "true")
	t.Setenv("GRIDWATCH_NOTIFY_EVENTS", "position_opened, position_closed")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "dogecoin", cfg.Scheduler.Asset)
	assert.Equal(t, 20, cfg.Ledger.GridSize)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"position_opened", "position_closed"}, cfg.Notify.Events)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "daemon"
	cfg.Ledger.Capital = -1
	cfg.Ledger.BuyThreshold = 1.5
	cfg.Scheduler.PollIntervalSeconds = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "capital must be positive")
	assert.Contains(t, err.Error(), "buy_threshold")
	assert.Contains(t, err.Error(), "poll_interval_seconds")
}

func TestValidateTelegramPair(t *testing.T) {
	cfg := Defaults()
	cfg.Notify.TelegramToken = "tok"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram_token and telegram_chat_id")

	cfg.Notify.TelegramChatID = "chat"
	require.NoError(t, cfg.Validate())
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.CoinGecko.APIKey = "secret-key"
	cfg.Redis.Password = "hunter2"
	cfg.Notify.TelegramToken = "tok"

	red := RedactedConfig(&cfg)

	assert.Equal(t, "***", red.CoinGecko.APIKey)
	assert.Equal(t, "***", red.Redis.Password)
	assert.Equal(t, "***", red.Notify.TelegramToken)
	// The original is untouched.
	assert.Equal(t, "secret-key", cfg.CoinGecko.APIKey)
	// Empty secrets stay empty rather than becoming "***".
	assert.Empty(t, red.Notify.DiscordWebhookURL)
}
