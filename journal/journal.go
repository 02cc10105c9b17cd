// Package journal keeps an append-only history of executed trades.
package journal

import "time"

// Account names used in trade records.
const (
	AccountPortfolio = "portfolio"
	AccountGold      = "gold"
)

// Sides of a trade.
const (
	SideBuy       = "BUY"
	SideSell      = "SELL"
	SideLiquidate = "LIQUIDATE"
)

type TradeRecord struct {
	TradeID   string
	Account   string
	Symbol    string
	Side      string
	Quantity  float64
	Price     float64
	Amount    float64 // cash moved, always positive
	CashAfter float64
	Time      time.Time
}

type Journal interface {
	RecordTrade(TradeRecord) error
	Close() error
}

// Reader looks trades up. SQLite implements it.
type Reader interface {
	GetTrade(tradeID string) (TradeRecord, error)
	ListTrades(account string, limit int) ([]TradeRecord, error)
}

// Discard is a Journal that drops every record.
var Discard Journal = discard{}

type discard struct{}

func (discard) RecordTrade(TradeRecord) error { return nil }
func (discard) Close() error                  { return nil }
