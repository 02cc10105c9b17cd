package ledger

import "github.com/rustyeddy/investflow/accounting"

// Holding is one line of a portfolio valuation.
type Holding struct {
	Symbol      string
	Quantity    float64
	AverageCost float64
	Price       float64
	Priced      bool // false when no current price was available
	Value       float64
	CostBasis   float64
	Profit      float64
	ProfitPct   float64
}

type Valuation struct {
	Cash     float64
	Holdings []Holding
	// Total is cash plus the value of every priced holding.
	Total float64
}

// Value marks every position to the supplied prices. Symbols missing from
// prices are reported unpriced and left out of the total.
func (l *Ledger) Value(prices map[string]float64) Valuation {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := Valuation{Cash: l.cash, Total: l.cash}
	for _, sym := range l.symbolsLocked() {
		p := l.positions[sym]
		h := Holding{
			Symbol:      sym,
			Quantity:    p.Quantity,
			AverageCost: p.AverageCost,
			CostBasis:   p.Quantity * p.AverageCost,
		}
		if price, ok := prices[sym]; ok {
			h.Priced = true
			h.Price = price
			h.Value = p.Quantity * price
			h.Profit = h.Value - h.CostBasis
			h.ProfitPct = accounting.Percent(h.Profit, h.CostBasis)
			v.Total += h.Value
		}
		v.Holdings = append(v.Holdings, h)
	}
	return v
}
