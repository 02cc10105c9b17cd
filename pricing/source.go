// Package pricing fetches market prices for stock tickers and gold.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/investflow/accounting"
	"go.uber.org/zap"
)

// Source returns the current price of symbol. Failures wrap
// accounting.ErrPriceUnavailable.
type Source interface {
	Price(ctx context.Context, symbol string) (float64, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, symbol string) (float64, error)

func (f SourceFunc) Price(ctx context.Context, symbol string) (float64, error) {
	return f(ctx, symbol)
}

func unavailable(symbol string, err error) error {
	if errors.Is(err, accounting.ErrPriceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", accounting.ErrPriceUnavailable, symbol, err)
}

func checkPrice(symbol string, p float64) (float64, error) {
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
		return 0, unavailable(symbol, fmt.Errorf("bad price %v", p))
	}
	return p, nil
}

// Static serves fixed prices.
type Static map[string]float64

func (s Static) Price(_ context.Context, symbol string) (float64, error) {
	p, ok := s[symbol]
	if !ok {
		return 0, unavailable(symbol, errors.New("no price"))
	}
	return checkPrice(symbol, p)
}

// Chain asks each source in turn and returns the first price found.
type Chain []Source

func (c Chain) Price(ctx context.Context, symbol string) (float64, error) {
	var errs []error
	for _, src := range c {
		p, err := src.Price(ctx, symbol)
		if err == nil {
			return p, nil
		}
		if ctx.Err() != nil {
			return 0, unavailable(symbol, ctx.Err())
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return 0, unavailable(symbol, errors.New("no sources"))
	}
	return 0, unavailable(symbol, errors.Join(errs...))
}

type fallback struct {
	src   Source
	price float64
	log   *zap.Logger
}

// WithDefault returns price whenever src fails. A nil log is allowed.
func WithDefault(src Source, price float64, log *zap.Logger) Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &fallback{src: src, price: price, log: log}
}

func (f *fallback) Price(ctx context.Context, symbol string) (float64, error) {
	p, err := f.src.Price(ctx, symbol)
	if err == nil {
		return p, nil
	}
	if ctx.Err() != nil {
		return 0, unavailable(symbol, ctx.Err())
	}
	f.log.Warn("price unavailable, using default",
		zap.String("symbol", symbol),
		zap.Float64("default", f.price),
		zap.Error(err))
	return f.price, nil
}

// WithTimeout bounds every call to src by d. A zero or negative d returns
// src unchanged.
func WithTimeout(src Source, d time.Duration) Source {
	if d <= 0 {
		return src
	}
	return SourceFunc(func(ctx context.Context, symbol string) (float64, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return src.Price(ctx, symbol)
	})
}
