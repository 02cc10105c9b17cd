package gold

import (
	"fmt"

	"github.com/rustyeddy/investflow/accounting"
)

// Summary is a valuation of the account at a given gold price.
type Summary struct {
	State
	CurrentPrice float64
	CurrentValue float64
	CostBasis    float64
	Profit       float64
	ProfitPct    float64
}

// Value computes the summary of st at price without touching any account.
func Value(st State, price float64) (Summary, error) {
	if err := accounting.ValidatePrice(price); err != nil {
		return Summary{}, fmt.Errorf("gold summary: %w", err)
	}

	s := Summary{State: st, CurrentPrice: price}
	if st.GoldOwned == 0 {
		return s, nil
	}
	s.CurrentValue = st.GoldOwned * price
	s.CostBasis = st.GoldOwned * st.AvgPurchasePrice
	s.Profit = s.CurrentValue - s.CostBasis
	s.ProfitPct = accounting.Percent(s.Profit, s.CostBasis)
	return s, nil
}

// Summary values the account's current state at price.
func (a *Account) Summary(price float64) (Summary, error) {
	return Value(a.State(), price)
}
