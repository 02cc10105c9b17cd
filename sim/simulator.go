// Package sim projects gold prices forward year by year and liquidates a
// holding at the most profitable simulated year.
package sim

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/rustyeddy/investflow/accounting"
	"github.com/rustyeddy/investflow/gold"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Default yearly growth band. Growth is always positive: this is a
// moderate appreciation model, not a market model.
const (
	DefaultMinRate = 0.01
	DefaultMaxRate = 0.05
)

// Year is one simulated yearly close.
type Year struct {
	Year      int // 1-indexed
	Price     float64
	Profit    float64
	ProfitPct float64
}

type Result struct {
	StartingPrice float64
	Years         []Year
	Best          Year
	CashReceived  float64
}

type Simulator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	minRate float64
	maxRate float64
	log     *zap.Logger
}

type Option func(*Simulator)

// WithRates sets the uniform growth band drawn from each year.
func WithRates(min, max float64) Option {
	return func(s *Simulator) { s.minRate, s.maxRate = min, max }
}

func WithLogger(log *zap.Logger) Option { return func(s *Simulator) { s.log = log } }

// New returns a simulator drawing growth rates from src. Tests pass a
// seeded source to get a reproducible sequence.
func New(src rand.Source, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		rng:     rand.New(src),
		minRate: DefaultMinRate,
		maxRate: DefaultMaxRate,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.minRate < 0 || s.maxRate < s.minRate {
		return nil, fmt.Errorf("%w: rate band [%v, %v]", accounting.ErrInvalidInput, s.minRate, s.maxRate)
	}
	return s, nil
}

// NewSeeded is New with a PCG source built from seed.
func NewSeeded(seed uint64, opts ...Option) (*Simulator, error) {
	return New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15), opts...)
}

func (s *Simulator) rate() float64 {
	return s.minRate + (s.maxRate-s.minRate)*s.rng.Float64()
}

// exactExp is below the smallest binary exponent of a float64, so
// NewFromFloatWithExponent keeps every digit of the stored value.
const exactExp = -1100

// RoundCents rounds a price to 2 decimal places. It rounds the exact binary
// value, ties to even: 2.675 is stored as 2.67499.. and gives 2.67, 0.125 is
// an exact tie and gives 0.12.
func RoundCents(x float64) float64 {
	return decimal.NewFromFloatWithExponent(x, exactExp).RoundBank(2).InexactFloat64()
}

// Project simulates years yearly closes starting from startingPrice for a
// holding of owned units bought at avg. Each year's price is rounded to
// cents before it is compounded into the next year. The best year is the
// first one with the strictly highest profit.
func (s *Simulator) Project(years int, startingPrice, owned, avg float64) (Result, error) {
	if years < 1 {
		return Result{}, fmt.Errorf("project: %w: years %d must be at least 1", accounting.ErrInvalidInput, years)
	}
	if err := accounting.ValidatePrice(startingPrice); err != nil || startingPrice == 0 {
		return Result{}, fmt.Errorf("project: %w: starting price %v", accounting.ErrInvalidPrice, startingPrice)
	}
	if owned == 0 {
		return Result{}, fmt.Errorf("project: %w", accounting.ErrNoHoldings)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	costBasis := owned * avg
	res := Result{StartingPrice: startingPrice, Years: make([]Year, 0, years)}
	price := startingPrice
	for y := 1; y <= years; y++ {
		price = RoundCents(price * (1 + s.rate()))
		profit := owned*price - costBasis
		yr := Year{
			Year:      y,
			Price:     price,
			Profit:    profit,
			ProfitPct: accounting.Percent(profit, costBasis),
		}
		res.Years = append(res.Years, yr)
		if y == 1 || yr.Profit > res.Best.Profit {
			res.Best = yr
		}
	}
	return res, nil
}

// SimulateAndLiquidate projects the account's holding forward and sells it
// all at the best simulated year's price. The account is mutated and saved
// once, after the projection completes. An account without holdings fails
// with accounting.ErrNoHoldings and is left untouched.
//
// The returned error wraps accounting.ErrPersistence when the liquidation
// was applied but could not be saved.
func (s *Simulator) SimulateAndLiquidate(acct *gold.Account, years int, startingPrice float64) (Result, error) {
	if years < 1 {
		return Result{}, fmt.Errorf("simulate: %w: years %d must be at least 1", accounting.ErrInvalidInput, years)
	}

	var res Result
	liq, err := acct.Liquidate(func(owned, avg float64) (float64, error) {
		r, err := s.Project(years, startingPrice, owned, avg)
		if err != nil {
			return 0, err
		}
		res = r
		return r.Best.Price, nil
	})
	if err != nil && !errors.Is(err, accounting.ErrPersistence) {
		return Result{}, fmt.Errorf("simulate: %w", err)
	}
	res.CashReceived = liq.CashReceived

	s.log.Info("gold liquidated at best simulated year",
		zap.Int("years", years),
		zap.Int("best_year", res.Best.Year),
		zap.Float64("price", res.Best.Price),
		zap.Float64("cash", res.CashReceived))

	if err != nil {
		return res, fmt.Errorf("simulate: %w", err)
	}
	return res, nil
}
