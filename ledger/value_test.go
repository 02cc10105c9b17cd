package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	l, _, _ := newLedger(t, 10000)
	mustBuy(t, l, "AAPL", 10, 100)
	mustBuy(t, l, "MSFT", 2, 300)

	v := l.Value(map[string]float64{"AAPL": 120})

	assert.Equal(t, 8400.0, v.Cash)
	require.Len(t, v.Holdings, 2)

	aapl := v.Holdings[0]
	assert.Equal(t, "AAPL", aapl.Symbol)
	assert.True(t, aapl.Priced)
	assert.Equal(t, 1200.0, aapl.Value)
	assert.Equal(t, 1000.0, aapl.CostBasis)
	assert.Equal(t, 200.0, aapl.Profit)
	assert.InDelta(t, 20.0, aapl.ProfitPct, 1e-9)

	msft := v.Holdings[1]
	assert.Equal(t, "MSFT", msft.Symbol)
	assert.False(t, msft.Priced)
	assert.Equal(t, 0.0, msft.Value)

	assert.Equal(t, 8400.0+1200.0, v.Total)
}

func TestValueEmpty(t *testing.T) {
	l := New(DefaultCash)
	v := l.Value(nil)
	assert.Empty(t, v.Holdings)
	assert.Equal(t, DefaultCash, v.Total)
}
