package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "USD", cfg.Account.Currency)
	assert.Equal(t, 10000.0, cfg.Account.StartingCash)
	assert.Equal(t, "file", cfg.Storage.Type)
	assert.Equal(t, 4197.38, cfg.Pricing.DefaultGoldPrice)
	assert.Equal(t, "GC=F", cfg.Pricing.GoldSymbol)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"missing currency", func(c *Config) { c.Account.Currency = "" }, "account.currency is required"},
		{"unknown currency", func(c *Config) { c.Account.Currency = "XXQ" }, "unknown currency"},
		{"negative cash", func(c *Config) { c.Account.StartingCash = -1 }, "account.starting_cash must not be negative"},
		{"bad storage", func(c *Config) { c.Storage.Type = "s3" }, "storage.type must be"},
		{"file without dir", func(c *Config) { c.Storage.Dir = "" }, "storage.dir required"},
		{"sqlite without path", func(c *Config) {
			c.Storage.Type = "sqlite"
			c.Storage.SQLitePath = ""
		}, "storage.sqlite_path required"},
		{"redis without addr", func(c *Config) {
			c.Storage.Type = "redis"
			c.Storage.Redis.Addr = ""
		}, "storage.redis.addr required"},
		{"memory storage", func(c *Config) { c.Storage.Type = "memory" }, ""},
		{"no journal", func(c *Config) { c.Journal.Type = "none" }, ""},
		{"bad journal", func(c *Config) { c.Journal.Type = "xml" }, "journal.type must be"},
		{"csv without file", func(c *Config) {
			c.Journal.Type = "csv"
			c.Journal.TradesFile = ""
		}, "journal trades_file required"},
		{"sqlite journal without path", func(c *Config) { c.Journal.DBPath = "" }, "journal db_path required"},
		{"zero gold default", func(c *Config) { c.Pricing.DefaultGoldPrice = 0 }, "pricing.default_gold_price must be positive"},
		{"bad timeout", func(c *Config) { c.Pricing.Timeout = "soon" }, "pricing.timeout"},
		{"negative refresh", func(c *Config) { c.Pricing.RefreshInterval = "-1s" }, "pricing.refresh_interval must not be negative"},
		{"negative retries", func(c *Config) { c.Pricing.Retries = -1 }, "pricing.retries must not be negative"},
		{"inverted rates", func(c *Config) { c.Simulation.MinRate, c.Simulation.MaxRate = 0.05, 0.01 }, "simulation.max_rate"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
		{"no extension", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Account.StartingCash = 2500
			cfg.Pricing.Watch = []string{"AAPL", "MSFT"}
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  type: memory\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, ".", cfg.Storage.Dir)
	assert.Equal(t, 10000.0, cfg.Account.StartingCash)
	assert.Equal(t, "6s", cfg.Pricing.Timeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("INVESTFLOW_STORAGE_TYPE", "sqlite")
	t.Setenv("INVESTFLOW_ACCOUNT_STARTING_CASH", "500")
	t.Setenv("INVESTFLOW_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, 500.0, cfg.Account.StartingCash)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o644))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "invalid config")
}

func TestDurations(t *testing.T) {
	tests := []struct {
		value    string
		expected time.Duration
		wantErr  bool
	}{
		{"6s", 6 * time.Second, false},
		{"500ms", 500 * time.Millisecond, false},
		{"", 0, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			p := PricingConfig{Timeout: tt.value}
			d, err := p.TimeoutDuration()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestPath(t *testing.T) {
	cfg := Default()
	cfg.Storage.Dir = "/data"
	assert.Equal(t, filepath.Join("/data", "journal.db"), cfg.Path("journal.db"))
	assert.Equal(t, "/tmp/x.db", cfg.Path("/tmp/x.db"))
	assert.Equal(t, "", cfg.Path(""))
}
