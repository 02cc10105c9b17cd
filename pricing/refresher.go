package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultRefreshInterval is the live price refresh period.
const DefaultRefreshInterval = 10 * time.Second

// Refresher polls Source for every symbol in Symbols on a fixed interval.
// The first refresh runs as soon as Run is called.
type Refresher struct {
	Source  Source
	Quotes  *Quotes
	Symbols func() []string

	Interval time.Duration // DefaultRefreshInterval if zero
	Workers  int           // concurrent fetches, 4 if zero

	// OnQuote and OnError are called from the Run goroutine, in symbol
	// order, after each refresh.
	OnQuote func(Quote)
	OnError func(symbol string, err error)

	Log *zap.Logger
	Now func() time.Time
}

// Run refreshes until ctx is cancelled. A failed fetch is reported and
// the loop carries on.
func (r *Refresher) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	log := r.logger()
	log.Info("starting price refresher", zap.Duration("interval", interval))

	_ = r.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = r.Refresh(ctx)
		case <-ctx.Done():
			log.Debug("price refresher stopped")
			return nil
		}
	}
}

type fetchResult struct {
	price float64
	err   error
}

// Refresh fetches every symbol once. It returns the joined fetch errors.
func (r *Refresher) Refresh(ctx context.Context) error {
	if r.Quotes == nil {
		r.Quotes = NewQuotes()
	}
	var symbols []string
	if r.Symbols != nil {
		symbols = r.Symbols()
	}
	if len(symbols) == 0 {
		return nil
	}

	workers := r.Workers
	if workers <= 0 {
		workers = 4
	}

	results := make([]fetchResult, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sym := range symbols {
		g.Go(func() error {
			p, err := r.Source.Price(gctx, sym)
			results[i] = fetchResult{price: p, err: err}
			return nil
		})
	}
	_ = g.Wait()

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	log := r.logger()

	var errs []error
	for i, sym := range symbols {
		res := results[i]
		if res.err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("price refresh failed", zap.String("symbol", sym), zap.Error(res.err))
			errs = append(errs, fmt.Errorf("%s: %w", sym, res.err))
			if r.OnError != nil {
				r.OnError(sym, res.err)
			}
			continue
		}
		q := r.Quotes.Update(sym, res.price, now())
		if r.OnQuote != nil {
			r.OnQuote(q)
		}
	}
	return errors.Join(errs...)
}

func (r *Refresher) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}
