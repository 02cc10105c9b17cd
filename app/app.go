// Package app holds the process-wide state: the stock ledger, the gold
// account and the favorites list, wired to persistence, the trade journal
// and the price sources.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/investflow/accounting"
	"github.com/rustyeddy/investflow/config"
	"github.com/rustyeddy/investflow/gold"
	"github.com/rustyeddy/investflow/journal"
	"github.com/rustyeddy/investflow/ledger"
	"github.com/rustyeddy/investflow/pricing"
	"github.com/rustyeddy/investflow/sim"
	"github.com/rustyeddy/investflow/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoTradeHistory is returned when the configured journal cannot be queried.
var ErrNoTradeHistory = errors.New("journal does not support queries")

type App struct {
	cfg *config.Config
	log *zap.Logger

	store   store.Store
	journal journal.Journal

	stocks pricing.Source
	gold   pricing.Source
	sim    *sim.Simulator

	Ledger    *ledger.Ledger
	Gold      *gold.Account
	Favorites *Favorites
}

type options struct {
	log     *zap.Logger
	store   store.Store
	journal journal.Journal
	stocks  pricing.Source
	gold    pricing.Source
	sim     *sim.Simulator
	now     func() time.Time
}

type Option func(*options)

func WithLogger(log *zap.Logger) Option { return func(o *options) { o.log = log } }

// WithStore replaces the store selected by the configuration.
func WithStore(s store.Store) Option { return func(o *options) { o.store = s } }

// WithJournal replaces the journal selected by the configuration.
func WithJournal(j journal.Journal) Option { return func(o *options) { o.journal = j } }

func WithStockSource(src pricing.Source) Option { return func(o *options) { o.stocks = src } }

func WithGoldSource(src pricing.Source) Option { return func(o *options) { o.gold = src } }

func WithSimulator(s *sim.Simulator) Option { return func(o *options) { o.sim = s } }

func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// Open loads the saved state and wires it together. Missing blobs start
// from defaults; unreadable ones are logged and replaced by defaults.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	a := &App{cfg: cfg, log: o.log, stocks: o.stocks, gold: o.gold, sim: o.sim}

	var err error
	a.store = o.store
	if a.store == nil {
		if a.store, err = OpenStore(ctx, cfg); err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	}
	a.journal = o.journal
	if a.journal == nil {
		if a.journal, err = OpenJournal(cfg); err != nil {
			_ = a.store.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
	}
	if err := a.wireSources(); err != nil {
		_ = a.Close()
		return nil, err
	}

	favs, err := store.LoadOr(ctx, a.store, store.KeyFavorites, []string{})
	a.warnLoad(store.KeyFavorites, err)
	a.Favorites = NewFavorites(favs, func(list []string) error {
		return a.save(store.KeyFavorites, list)
	})

	ledgerOpts := []ledger.Option{
		ledger.WithPersist(func(s ledger.Snapshot) error { return a.save(store.KeyPortfolio, s) }),
		ledger.WithJournal(a.journal),
		ledger.WithLogger(a.log.Named("ledger")),
		ledger.WithClock(o.now),
	}
	defPortfolio := ledger.Snapshot{Cash: cfg.Account.StartingCash, Positions: map[string]ledger.Position{}}
	snap, err := store.LoadOr(ctx, a.store, store.KeyPortfolio, defPortfolio)
	a.warnLoad(store.KeyPortfolio, err)
	if a.Ledger, err = ledger.FromSnapshot(snap, ledgerOpts...); err != nil {
		a.warnLoad(store.KeyPortfolio, err)
		a.Ledger = ledger.New(cfg.Account.StartingCash, ledgerOpts...)
	}

	goldOpts := []gold.Option{
		gold.WithPersist(func(st gold.State) error { return a.save(store.KeyGoldPortfolio, st) }),
		gold.WithJournal(a.journal),
		gold.WithLogger(a.log.Named("gold")),
		gold.WithClock(o.now),
	}
	st, err := store.LoadOr(ctx, a.store, store.KeyGoldPortfolio, gold.State{})
	a.warnLoad(store.KeyGoldPortfolio, err)
	if a.Gold, err = gold.FromState(st, goldOpts...); err != nil {
		a.warnLoad(store.KeyGoldPortfolio, err)
		a.Gold = gold.New(goldOpts...)
	}

	return a, nil
}

func (a *App) wireSources() error {
	var err error
	if a.stocks == nil {
		if a.stocks, err = StockSource(a.cfg.Pricing, a.log.Named("pricing")); err != nil {
			return err
		}
	}
	if a.gold == nil {
		if a.gold, err = GoldSource(a.cfg.Pricing, a.log.Named("pricing")); err != nil {
			return err
		}
	}
	if a.sim == nil {
		if a.sim, err = NewSimulator(a.cfg.Simulation, a.log.Named("sim")); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) warnLoad(key string, err error) {
	if err != nil {
		a.log.Warn("could not load saved state, using defaults", zap.String("key", key), zap.Error(err))
	}
}

func (a *App) save(key string, v any) error {
	if err := a.store.Save(context.Background(), key, v); err != nil {
		a.log.Warn("save failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (a *App) Config() *config.Config { return a.cfg }

// Journal returns the trade journal.
func (a *App) Journal() journal.Journal { return a.journal }

// Close saves every blob and releases the journal and the store.
func (a *App) Close() error {
	var errs []error
	if a.Favorites != nil {
		errs = append(errs, a.Favorites.Save())
	}
	if a.Ledger != nil {
		errs = append(errs, a.Ledger.Save())
	}
	if a.Gold != nil {
		errs = append(errs, a.Gold.Save())
	}
	if a.journal != nil {
		errs = append(errs, a.journal.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}

// StockPrice fetches the current price of one ticker.
func (a *App) StockPrice(ctx context.Context, ticker string) (string, float64, error) {
	sym, err := accounting.NormalizeSymbol(ticker)
	if err != nil {
		return "", 0, err
	}
	p, err := a.stocks.Price(ctx, sym)
	if err != nil {
		return sym, 0, err
	}
	return sym, p, nil
}

// Prices fetches tickers concurrently. Tickers whose price is unavailable
// are missing from the result.
func (a *App) Prices(ctx context.Context, tickers []string) map[string]float64 {
	prices := make([]float64, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.cfg.Pricing.Workers, 1))
	for i, sym := range tickers {
		g.Go(func() error {
			p, err := a.stocks.Price(gctx, sym)
			if err != nil {
				a.log.Warn("price unavailable", zap.String("symbol", sym), zap.Error(err))
				return nil
			}
			prices[i] = p
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]float64, len(tickers))
	for i, sym := range tickers {
		if prices[i] > 0 {
			out[sym] = prices[i]
		}
	}
	return out
}

// BuyStock buys qty shares of ticker at the current market price.
func (a *App) BuyStock(ctx context.Context, ticker string, qty float64) (ledger.Fill, error) {
	if err := accounting.ValidateQuantity(qty); err != nil {
		return ledger.Fill{}, fmt.Errorf("buy %s: %w", ticker, err)
	}
	sym, price, err := a.StockPrice(ctx, ticker)
	if err != nil {
		return ledger.Fill{}, fmt.Errorf("buy %s: %w", ticker, err)
	}
	return a.Ledger.Buy(sym, qty, price)
}

// SellStock sells qty shares of ticker at the current market price.
func (a *App) SellStock(ctx context.Context, ticker string, qty float64) (ledger.Fill, error) {
	if err := accounting.ValidateQuantity(qty); err != nil {
		return ledger.Fill{}, fmt.Errorf("sell %s: %w", ticker, err)
	}
	sym, err := accounting.NormalizeSymbol(ticker)
	if err != nil {
		return ledger.Fill{}, fmt.Errorf("sell %s: %w", ticker, err)
	}
	if _, err := a.Ledger.Position(sym); err != nil {
		return ledger.Fill{}, fmt.Errorf("sell %s: %w", sym, err)
	}
	_, price, err := a.StockPrice(ctx, sym)
	if err != nil {
		return ledger.Fill{}, fmt.Errorf("sell %s: %w", sym, err)
	}
	return a.Ledger.Sell(sym, qty, price)
}

// PortfolioValue marks every position to market.
func (a *App) PortfolioValue(ctx context.Context) ledger.Valuation {
	return a.Ledger.Value(a.Prices(ctx, a.Ledger.Symbols()))
}

// Export writes the portfolio snapshot to the export blob and returns it.
func (a *App) Export(ctx context.Context) (ledger.Snapshot, error) {
	snap := a.Ledger.Snapshot()
	if err := a.store.Save(ctx, store.KeyPortfolioExport, snap); err != nil {
		return snap, fmt.Errorf("export portfolio: %w", accounting.Persisted(err))
	}
	return snap, nil
}

// GoldPrice returns the current gold price, or the configured default when
// no source answers.
func (a *App) GoldPrice(ctx context.Context) (float64, error) {
	p, err := a.gold.Price(ctx, a.cfg.Pricing.GoldSymbol)
	if err != nil {
		return 0, fmt.Errorf("gold price: %w", err)
	}
	return p, nil
}

// BuyGold spends amount of the gold balance at the current gold price.
func (a *App) BuyGold(ctx context.Context, amount float64) (gold.Purchase, error) {
	price, err := a.GoldPrice(ctx)
	if err != nil {
		return gold.Purchase{}, err
	}
	return a.Gold.Buy(amount, price)
}

// SetGoldBalance replaces the gold account's cash balance.
func (a *App) SetGoldBalance(amount string) error {
	return a.Gold.SetBalanceString(amount)
}

func (a *App) GoldSummary(ctx context.Context) (gold.Summary, error) {
	price, err := a.GoldPrice(ctx)
	if err != nil {
		return gold.Summary{}, err
	}
	return a.Gold.Summary(price)
}

// SimulateGold projects the holding years ahead from the current gold
// price and sells it at the best simulated year.
func (a *App) SimulateGold(ctx context.Context, years int) (sim.Result, error) {
	if years < 1 {
		return sim.Result{}, fmt.Errorf("simulate: %w: years %d must be at least 1", accounting.ErrInvalidInput, years)
	}
	if a.Gold.State().GoldOwned == 0 {
		return sim.Result{}, fmt.Errorf("simulate: %w", accounting.ErrNoHoldings)
	}
	price, err := a.GoldPrice(ctx)
	if err != nil {
		return sim.Result{}, err
	}
	return a.sim.SimulateAndLiquidate(a.Gold, years, price)
}

func (a *App) ResetGold() error {
	return a.Gold.Reset()
}

// Trades lists journaled trades, newest first.
func (a *App) Trades(account string, limit int) ([]journal.TradeRecord, error) {
	r, ok := a.journal.(journal.Reader)
	if !ok {
		return nil, ErrNoTradeHistory
	}
	return r.ListTrades(account, limit)
}

// Trade looks up one journaled trade.
func (a *App) Trade(tradeID string) (journal.TradeRecord, error) {
	r, ok := a.journal.(journal.Reader)
	if !ok {
		return journal.TradeRecord{}, ErrNoTradeHistory
	}
	return r.GetTrade(tradeID)
}

// Refresher returns a live quote poller over tickers, or over the
// favorites when tickers is empty.
func (a *App) Refresher(tickers []string) (*pricing.Refresher, error) {
	interval, err := a.cfg.Pricing.RefreshDuration()
	if err != nil {
		return nil, err
	}
	symbols := a.Favorites.List
	if len(tickers) > 0 {
		var fixed []string
		for _, t := range tickers {
			sym, err := accounting.NormalizeSymbol(t)
			if err != nil {
				return nil, err
			}
			fixed = append(fixed, sym)
		}
		symbols = func() []string { return fixed }
	}
	return &pricing.Refresher{
		Source:   a.stocks,
		Quotes:   pricing.NewQuotes(),
		Symbols:  symbols,
		Interval: interval,
		Workers:  a.cfg.Pricing.Workers,
		Log:      a.log.Named("refresher"),
	}, nil
}
