package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. INVESTFLOW_STORAGE_TYPE.
const EnvPrefix = "INVESTFLOW"

// Config represents the complete application configuration
type Config struct {
	Account    AccountConfig    `json:"account" yaml:"account" mapstructure:"account"`
	Storage    StorageConfig    `json:"storage" yaml:"storage" mapstructure:"storage"`
	Journal    JournalConfig    `json:"journal" yaml:"journal" mapstructure:"journal"`
	Pricing    PricingConfig    `json:"pricing" yaml:"pricing" mapstructure:"pricing"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation" mapstructure:"simulation"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

// AccountConfig sets up a portfolio that has never been saved
type AccountConfig struct {
	StartingCash float64 `json:"starting_cash" yaml:"starting_cash" mapstructure:"starting_cash"`
	Currency     string  `json:"currency" yaml:"currency" mapstructure:"currency"`
}

// StorageConfig selects where the portfolio, gold account and favorites live
type StorageConfig struct {
	Type       string      `json:"type" yaml:"type" mapstructure:"type"` // file, sqlite, redis or memory
	Dir        string      `json:"dir" yaml:"dir" mapstructure:"dir"`
	SQLitePath string      `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty" mapstructure:"sqlite_path"`
	Redis      RedisConfig `json:"redis" yaml:"redis" mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr" mapstructure:"addr"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	DB       int    `json:"db" yaml:"db" mapstructure:"db"`
	Prefix   string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type" mapstructure:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty" mapstructure:"trades_file"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty" mapstructure:"db_path"`
}

// PricingConfig contains market data parameters
type PricingConfig struct {
	YahooURL         string   `json:"yahoo_url" yaml:"yahoo_url" mapstructure:"yahoo_url"`
	MetalsURL        string   `json:"metals_url" yaml:"metals_url" mapstructure:"metals_url"`
	GoldSymbol       string   `json:"gold_symbol" yaml:"gold_symbol" mapstructure:"gold_symbol"`
	DefaultGoldPrice float64  `json:"default_gold_price" yaml:"default_gold_price" mapstructure:"default_gold_price"`
	Timeout          string   `json:"timeout" yaml:"timeout" mapstructure:"timeout"`                // e.g. "6s"
	Retries          int      `json:"retries" yaml:"retries" mapstructure:"retries"`                // extra attempts after the first
	RetryDelay       string   `json:"retry_delay" yaml:"retry_delay" mapstructure:"retry_delay"`    // first backoff interval
	RefreshInterval  string   `json:"refresh_interval" yaml:"refresh_interval" mapstructure:"refresh_interval"`
	Workers          int      `json:"workers" yaml:"workers" mapstructure:"workers"`
	Watch            []string `json:"watch,omitempty" yaml:"watch,omitempty" mapstructure:"watch"`
}

// SimulationConfig contains gold projection parameters
type SimulationConfig struct {
	MinRate float64 `json:"min_rate" yaml:"min_rate" mapstructure:"min_rate"`
	MaxRate float64 `json:"max_rate" yaml:"max_rate" mapstructure:"max_rate"`
	Seed    uint64  `json:"seed" yaml:"seed" mapstructure:"seed"` // 0 picks a random seed
}

type LogConfig struct {
	Level       string `json:"level" yaml:"level" mapstructure:"level"`
	Development bool   `json:"development" yaml:"development" mapstructure:"development"`
	File        string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// TimeoutDuration parses Pricing.Timeout
func (p PricingConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("pricing.timeout", p.Timeout)
}

// RetryDelayDuration parses Pricing.RetryDelay
func (p PricingConfig) RetryDelayDuration() (time.Duration, error) {
	return parseDuration("pricing.retry_delay", p.RetryDelay)
}

// RefreshDuration parses Pricing.RefreshInterval
func (p PricingConfig) RefreshDuration() (time.Duration, error) {
	return parseDuration("pricing.refresh_interval", p.RefreshInterval)
}

func parseDuration(name, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return d, nil
}

// Path resolves p against the storage directory unless it is absolute.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Storage.Dir, p)
}

// Load reads the configuration from path, or only defaults and the
// environment when path is empty. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".yaml", ".yml", ".toml":
		default:
			// YAML also accepts JSON documents
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Load(path)
}

func setDefaults(v *viper.Viper, d *Config) {
	defaults := map[string]any{
		"account.starting_cash":      d.Account.StartingCash,
		"account.currency":           d.Account.Currency,
		"storage.type":               d.Storage.Type,
		"storage.dir":                d.Storage.Dir,
		"storage.sqlite_path":        d.Storage.SQLitePath,
		"storage.redis.addr":         d.Storage.Redis.Addr,
		"storage.redis.password":     d.Storage.Redis.Password,
		"storage.redis.db":           d.Storage.Redis.DB,
		"storage.redis.prefix":       d.Storage.Redis.Prefix,
		"journal.type":               d.Journal.Type,
		"journal.trades_file":        d.Journal.TradesFile,
		"journal.db_path":            d.Journal.DBPath,
		"pricing.yahoo_url":          d.Pricing.YahooURL,
		"pricing.metals_url":         d.Pricing.MetalsURL,
		"pricing.gold_symbol":        d.Pricing.GoldSymbol,
		"pricing.default_gold_price": d.Pricing.DefaultGoldPrice,
		"pricing.timeout":            d.Pricing.Timeout,
		"pricing.retries":            d.Pricing.Retries,
		"pricing.retry_delay":        d.Pricing.RetryDelay,
		"pricing.refresh_interval":   d.Pricing.RefreshInterval,
		"pricing.workers":            d.Pricing.Workers,
		"pricing.watch":              d.Pricing.Watch,
		"simulation.min_rate":        d.Simulation.MinRate,
		"simulation.max_rate":        d.Simulation.MaxRate,
		"simulation.seed":            d.Simulation.Seed,
		"log.level":                  d.Log.Level,
		"log.development":            d.Log.Development,
		"log.file":                   d.Log.File,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if money.GetCurrency(c.Account.Currency) == nil {
		return fmt.Errorf("unknown currency: %s", c.Account.Currency)
	}
	if c.Account.StartingCash < 0 {
		return fmt.Errorf("account.starting_cash must not be negative")
	}

	switch c.Storage.Type {
	case "file":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir required for file storage")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path required for sqlite storage")
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr required for redis storage")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.type must be 'file', 'sqlite', 'redis' or 'memory'")
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" {
			return fmt.Errorf("journal trades_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	if c.Pricing.GoldSymbol == "" {
		return fmt.Errorf("pricing.gold_symbol is required")
	}
	if c.Pricing.DefaultGoldPrice <= 0 {
		return fmt.Errorf("pricing.default_gold_price must be positive")
	}
	if c.Pricing.Retries < 0 {
		return fmt.Errorf("pricing.retries must not be negative")
	}
	if c.Pricing.Workers < 0 {
		return fmt.Errorf("pricing.workers must not be negative")
	}
	for _, parse := range []func() (time.Duration, error){
		c.Pricing.TimeoutDuration,
		c.Pricing.RetryDelayDuration,
		c.Pricing.RefreshDuration,
	} {
		if _, err := parse(); err != nil {
			return err
		}
	}

	if c.Simulation.MinRate < 0 {
		return fmt.Errorf("simulation.min_rate must not be negative")
	}
	if c.Simulation.MaxRate < c.Simulation.MinRate {
		return fmt.Errorf("simulation.max_rate must be at least min_rate")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			StartingCash: 10000,
			Currency:     "USD",
		},
		Storage: StorageConfig{
			Type:       "file",
			Dir:        ".",
			SQLitePath: "investflow.db",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "investflow:",
			},
		},
		Journal: JournalConfig{
			Type:       "sqlite",
			TradesFile: "trades.csv",
			DBPath:     "journal.db",
		},
		Pricing: PricingConfig{
			YahooURL:         "https://query1.finance.yahoo.com",
			MetalsURL:        "https://api.metals.live/v1/spot/gold",
			GoldSymbol:       "GC=F",
			DefaultGoldPrice: 4197.38,
			Timeout:          "6s",
			Retries:          2,
			RetryDelay:       "500ms",
			RefreshInterval:  "10s",
			Workers:          4,
		},
		Simulation: SimulationConfig{
			MinRate: 0.01,
			MaxRate: 0.05,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
