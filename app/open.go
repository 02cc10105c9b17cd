package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rustyeddy/investflow/config"
	"github.com/rustyeddy/investflow/journal"
	"github.com/rustyeddy/investflow/pricing"
	"github.com/rustyeddy/investflow/sim"
	"github.com/rustyeddy/investflow/store"
	"go.uber.org/zap"
)

// OpenStore returns the blob store selected by cfg.Storage.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Type {
	case "file":
		return store.NewFile(cfg.Storage.Dir)
	case "sqlite":
		if err := ensureDir(cfg.Storage.Dir); err != nil {
			return nil, err
		}
		return store.NewSQLite(cfg.Path(cfg.Storage.SQLitePath))
	case "redis":
		r := cfg.Storage.Redis
		return store.NewRedis(ctx, store.RedisOptions{
			Addr:     r.Addr,
			Password: r.Password,
			DB:       r.DB,
			Prefix:   r.Prefix,
		})
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// OpenJournal returns the trade journal selected by cfg.Journal.
func OpenJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "", "none":
		return journal.Discard, nil
	case "csv":
		if err := ensureDir(cfg.Storage.Dir); err != nil {
			return nil, err
		}
		return journal.NewCSV(cfg.Path(cfg.Journal.TradesFile))
	case "sqlite":
		if err := ensureDir(cfg.Storage.Dir); err != nil {
			return nil, err
		}
		return journal.NewSQLite(cfg.Path(cfg.Journal.DBPath))
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
	}
}

func ensureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

// StockSource is the Yahoo chart client with retries. Each attempt is
// bounded by cfg.Timeout.
func StockSource(cfg config.PricingConfig, log *zap.Logger) (pricing.Source, error) {
	timeout, retry, err := durations(cfg)
	if err != nil {
		return nil, err
	}
	return retrying(pricing.WithTimeout(pricing.NewYahoo(cfg.YahooURL, 0), timeout), cfg, retry, log), nil
}

// GoldSource tries Yahoo gold futures, then metals.live spot, then falls
// back to cfg.DefaultGoldPrice. Callers ask it for cfg.GoldSymbol.
func GoldSource(cfg config.PricingConfig, log *zap.Logger) (pricing.Source, error) {
	timeout, retry, err := durations(cfg)
	if err != nil {
		return nil, err
	}
	chain := pricing.Chain{
		retrying(pricing.WithTimeout(pricing.NewYahoo(cfg.YahooURL, 0), timeout), cfg, retry, log),
		retrying(pricing.WithTimeout(pricing.NewMetalsLive(cfg.MetalsURL, 0), timeout), cfg, retry, log),
	}
	return pricing.WithDefault(chain, cfg.DefaultGoldPrice, log), nil
}

func durations(cfg config.PricingConfig) (timeout, retry time.Duration, err error) {
	if timeout, err = cfg.TimeoutDuration(); err != nil {
		return 0, 0, err
	}
	if retry, err = cfg.RetryDelayDuration(); err != nil {
		return 0, 0, err
	}
	return timeout, retry, nil
}

func retrying(src pricing.Source, cfg config.PricingConfig, delay time.Duration, log *zap.Logger) pricing.Source {
	if cfg.Retries == 0 {
		return src
	}
	return pricing.Retry(src, pricing.RetryOptions{
		MaxTries:        uint(cfg.Retries) + 1,
		InitialInterval: delay,
		Log:             log,
	})
}

// NewSimulator builds the year simulator from cfg.Simulation. A zero
// seed draws one from the runtime.
func NewSimulator(cfg config.SimulationConfig, log *zap.Logger) (*sim.Simulator, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return sim.NewSeeded(seed, sim.WithRates(cfg.MinRate, cfg.MaxRate), sim.WithLogger(log))
}
