package ledger

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rustyeddy/investflow/accounting"
	"github.com/rustyeddy/investflow/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testJournal struct {
	mu     sync.Mutex
	trades []journal.TradeRecord
	err    error
}

func (j *testJournal) RecordTrade(rec journal.TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.trades = append(j.trades, rec)
	return j.err
}

func (j *testJournal) Close() error { return nil }

type saves struct {
	mu    sync.Mutex
	snaps []Snapshot
	err   error
}

func (s *saves) persist(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
	return s.err
}

func (s *saves) last() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snaps[len(s.snaps)-1]
}

func newLedger(t *testing.T, cash float64) (*Ledger, *saves, *testJournal) {
	t.Helper()
	s := &saves{}
	j := &testJournal{}
	clock := func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return New(cash, WithPersist(s.persist), WithJournal(j), WithClock(clock)), s, j
}

func mustBuy(t *testing.T, l *Ledger, sym string, qty, price float64) Fill {
	t.Helper()
	fill, err := l.Buy(sym, qty, price)
	require.NoError(t, err)
	return fill
}

func TestBuyIntoEmptyPosition(t *testing.T) {
	l, _, _ := newLedger(t, 10000)

	fill := mustBuy(t, l, "AAPL", 10, 100)

	assert.Equal(t, "AAPL", fill.Symbol)
	assert.Equal(t, journal.SideBuy, fill.Side)
	assert.Equal(t, 1000.0, fill.Amount)
	assert.Equal(t, 9000.0, fill.Cash)
	assert.Equal(t, Position{Quantity: 10, AverageCost: 100}, fill.Position)

	pos, err := l.Position("AAPL")
	require.NoError(t, err)
	assert.Equal(t, Position{Quantity: 10, AverageCost: 100}, pos)
	assert.Equal(t, 9000.0, l.Cash())
}

func TestBuyRecomputesAverageCost(t *testing.T) {
	l, _, _ := newLedger(t, 10000)

	mustBuy(t, l, "AAPL", 10, 100)
	mustBuy(t, l, "AAPL", 10, 200)

	pos, err := l.Position("AAPL")
	require.NoError(t, err)
	assert.Equal(t, 20.0, pos.Quantity)
	assert.Equal(t, 150.0, pos.AverageCost)
	assert.Equal(t, 7000.0, l.Cash())
}

func TestBuyNormalizesSymbol(t *testing.T) {
	l, _, _ := newLedger(t, 10000)

	mustBuy(t, l, " msft ", 1, 300)
	_, err := l.Position("MSFT")
	assert.NoError(t, err)
	assert.Equal(t, []string{"MSFT"}, l.Symbols())
}

func TestBuyExactCash(t *testing.T) {
	l, _, _ := newLedger(t, 1000)
	mustBuy(t, l, "SPY", 4, 250)
	assert.Equal(t, 0.0, l.Cash())
}

func TestBuyInsufficientFundsLeavesStateUnchanged(t *testing.T) {
	l, s, j := newLedger(t, 500)
	mustBuy(t, l, "KO", 5, 60)
	before := l.Snapshot()
	nSaves := len(s.snaps)

	_, err := l.Buy("KO", 10, 60)
	assert.ErrorIs(t, err, accounting.ErrInsufficientFunds)

	_, err = l.Buy("PEP", 1, 1000)
	assert.ErrorIs(t, err, accounting.ErrInsufficientFunds)

	assert.Equal(t, before, l.Snapshot())
	assert.Len(t, s.snaps, nSaves)
	assert.Len(t, j.trades, 1)
	_, err = l.Position("PEP")
	assert.ErrorIs(t, err, accounting.ErrUnknownPosition)
}

func TestBuyRejectsInvalidInput(t *testing.T) {
	l, s, _ := newLedger(t, 1000)

	tests := []struct {
		name       string
		sym        string
		qty, price float64
		want       error
	}{
		{"zero quantity", "AAPL", 0, 10, accounting.ErrInvalidInput},
		{"negative quantity", "AAPL", -1, 10, accounting.ErrInvalidInput},
		{"negative price", "AAPL", 1, -10, accounting.ErrInvalidPrice},
		{"empty symbol", " ", 1, 10, accounting.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Buy(tt.sym, tt.qty, tt.price)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, s.snaps)
	assert.Equal(t, 1000.0, l.Cash())
}

func TestSellKeepsAverageCost(t *testing.T) {
	l, _, _ := newLedger(t, 10000)
	mustBuy(t, l, "NVDA", 10, 100)
	mustBuy(t, l, "NVDA", 10, 200)

	fill, err := l.Sell("NVDA", 5, 300)
	require.NoError(t, err)

	assert.Equal(t, journal.SideSell, fill.Side)
	assert.Equal(t, 1500.0, fill.Amount)
	assert.Equal(t, Position{Quantity: 15, AverageCost: 150}, fill.Position)
	assert.Equal(t, 7000.0+1500.0, l.Cash())

	pos, err := l.Position("NVDA")
	require.NoError(t, err)
	assert.Equal(t, 150.0, pos.AverageCost)
}

func TestSellAllRemovesPosition(t *testing.T) {
	l, s, _ := newLedger(t, 10000)
	mustBuy(t, l, "TSLA", 3, 200)

	fill, err := l.Sell("TSLA", 3, 210)
	require.NoError(t, err)
	assert.Equal(t, Position{}, fill.Position)

	_, err = l.Position("TSLA")
	assert.ErrorIs(t, err, accounting.ErrUnknownPosition)
	assert.Empty(t, l.Symbols())
	assert.NotContains(t, s.last().Positions, "TSLA")
}

func TestSellFractionalHoldingLeavesNoDust(t *testing.T) {
	l, s, _ := newLedger(t, 10000)
	mustBuy(t, l, "AAA", 0.1, 10)
	mustBuy(t, l, "AAA", 0.2, 10)

	fill, err := l.Sell("AAA", 0.3, 10)
	require.NoError(t, err)
	assert.Equal(t, Position{}, fill.Position)

	_, err = l.Position("AAA")
	assert.ErrorIs(t, err, accounting.ErrUnknownPosition)
	assert.NotContains(t, s.last().Positions, "AAA")
	assert.InDelta(t, 10000.0, l.Cash(), 1e-9)
}

func TestSellSlightlyMoreThanHeldSellsAll(t *testing.T) {
	l, _, _ := newLedger(t, 10000)
	mustBuy(t, l, "AAA", 0.3, 10)

	fill, err := l.Sell("AAA", 0.1+0.2, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.3, fill.Quantity)
	_, err = l.Position("AAA")
	assert.ErrorIs(t, err, accounting.ErrUnknownPosition)
}

func TestSellUnknownPosition(t *testing.T) {
	l, _, _ := newLedger(t, 10000)
	_, err := l.Sell("AMD", 1, 100)
	assert.ErrorIs(t, err, accounting.ErrUnknownPosition)
}

func TestSellTooManySharesLeavesStateUnchanged(t *testing.T) {
	l, _, _ := newLedger(t, 10000)
	mustBuy(t, l, "AMZN", 2, 100)
	before := l.Snapshot()

	_, err := l.Sell("AMZN", 3, 100)
	assert.ErrorIs(t, err, accounting.ErrInsufficientShares)
	assert.Equal(t, before, l.Snapshot())
}

func TestBuySellRoundTrip(t *testing.T) {
	l, _, _ := newLedger(t, 10000)

	mustBuy(t, l, "GOOG", 7, 140)
	_, err := l.Sell("GOOG", 7, 140)
	require.NoError(t, err)

	assert.Equal(t, 10000.0, l.Cash())
	_, err = l.Position("GOOG")
	assert.ErrorIs(t, err, accounting.ErrUnknownPosition)
}

func TestTradesArePersistedAndJournaled(t *testing.T) {
	l, s, j := newLedger(t, 10000)

	mustBuy(t, l, "V", 10, 250)
	_, err := l.Sell("V", 4, 260)
	require.NoError(t, err)

	require.Len(t, s.snaps, 2)
	assert.Equal(t, Snapshot{Cash: 7500, Positions: map[string]Position{"V": {Quantity: 10, AverageCost: 250}}}, s.snaps[0])
	assert.Equal(t, Snapshot{Cash: 8540, Positions: map[string]Position{"V": {Quantity: 6, AverageCost: 250}}}, s.snaps[1])

	require.Len(t, j.trades, 2)
	assert.Equal(t, journal.AccountPortfolio, j.trades[0].Account)
	assert.Equal(t, journal.SideBuy, j.trades[0].Side)
	assert.Equal(t, 7500.0, j.trades[0].CashAfter)
	assert.Equal(t, journal.SideSell, j.trades[1].Side)
	assert.Equal(t, 1040.0, j.trades[1].Amount)
	assert.NotEqual(t, j.trades[0].TradeID, j.trades[1].TradeID)
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	l, s, _ := newLedger(t, 10000)
	s.err = errors.New("disk full")

	fill, err := l.Buy("MA", 2, 400)
	assert.ErrorIs(t, err, accounting.ErrPersistence)
	assert.Equal(t, 2.0, fill.Quantity)
	assert.Equal(t, 9200.0, l.Cash())

	pos, perr := l.Position("MA")
	require.NoError(t, perr)
	assert.Equal(t, 2.0, pos.Quantity)
}

func TestJournalFailureDoesNotFailTrade(t *testing.T) {
	l, _, j := newLedger(t, 10000)
	j.err = errors.New("journal closed")

	_, err := l.Buy("DIS", 1, 90)
	assert.NoError(t, err)
	assert.Equal(t, 9910.0, l.Cash())
}

func TestFromSnapshot(t *testing.T) {
	l, err := FromSnapshot(Snapshot{
		Cash: 1234.5,
		Positions: map[string]Position{
			"aapl": {Quantity: 3, AverageCost: 150},
			"ZERO": {Quantity: 0, AverageCost: 10},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1234.5, l.Cash())
	assert.Equal(t, []string{"AAPL"}, l.Symbols())

	_, err = FromSnapshot(Snapshot{Positions: map[string]Position{"BAD": {Quantity: -1}}})
	assert.ErrorIs(t, err, accounting.ErrInvalidInput)

	_, err = FromSnapshot(Snapshot{Positions: map[string]Position{"BAD": {Quantity: 1, AverageCost: -5}}})
	assert.ErrorIs(t, err, accounting.ErrInvalidPrice)
}

func TestSnapshotIsACopy(t *testing.T) {
	l, _, _ := newLedger(t, 10000)
	mustBuy(t, l, "UBER", 1, 70)

	snap := l.Snapshot()
	snap.Positions["UBER"] = Position{Quantity: 99}

	pos, err := l.Position("UBER")
	require.NoError(t, err)
	assert.Equal(t, 1.0, pos.Quantity)
}

func TestConcurrentTradesAreSerialized(t *testing.T) {
	l, s, _ := newLedger(t, 100000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Buy("QQQ", 1, 100)
		}()
	}
	wg.Wait()

	pos, err := l.Position("QQQ")
	require.NoError(t, err)
	assert.Equal(t, 50.0, pos.Quantity)
	assert.Equal(t, 100.0, pos.AverageCost)
	assert.Equal(t, 95000.0, l.Cash())
	assert.Len(t, s.snaps, 50)
	assert.Equal(t, 95000.0, s.last().Cash)
}
