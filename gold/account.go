// Package gold implements a single-asset account holding cash and ounces of
// gold bought at a weighted average price.
package gold

import (
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/investflow/accounting"
	"github.com/rustyeddy/investflow/journal"
	"github.com/rustyeddy/investflow/pkg/id"
	"go.uber.org/zap"
)

// Symbol identifies gold in trade records.
const Symbol = "GOLD"

// State is the persisted form of an Account.
type State struct {
	Balance          float64 `json:"balance"`
	GoldOwned        float64 `json:"gold_owned"`
	AvgPurchasePrice float64 `json:"avg_purchase_price"`
}

// Purchase describes an executed gold buy.
type Purchase struct {
	TradeID string
	Units   float64
	Price   float64
	Amount  float64
}

// Liquidation describes the sale of the whole holding.
type Liquidation struct {
	TradeID      string
	Units        float64
	Price        float64
	CashReceived float64
}

// PersistFunc saves the account state. It runs while the account is locked.
type PersistFunc func(State) error

type Account struct {
	mu sync.Mutex
	st State

	persist PersistFunc
	journal journal.Journal
	log     *zap.Logger
	now     func() time.Time
}

type Option func(*Account)

func WithPersist(fn PersistFunc) Option { return func(a *Account) { a.persist = fn } }

func WithJournal(j journal.Journal) Option { return func(a *Account) { a.journal = j } }

func WithLogger(log *zap.Logger) Option { return func(a *Account) { a.log = log } }

func WithClock(now func() time.Time) Option { return func(a *Account) { a.now = now } }

// New returns an empty account.
func New(opts ...Option) *Account {
	a := &Account{
		journal: journal.Discard,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FromState rebuilds an account from persisted state.
func FromState(st State, opts ...Option) (*Account, error) {
	if err := accounting.ValidateAmount(st.Balance); err != nil {
		return nil, fmt.Errorf("load gold balance: %w", err)
	}
	if st.GoldOwned != 0 {
		if err := accounting.ValidateQuantity(st.GoldOwned); err != nil {
			return nil, fmt.Errorf("load gold owned: %w", err)
		}
		if err := accounting.ValidatePrice(st.AvgPurchasePrice); err != nil {
			return nil, fmt.Errorf("load gold average price: %w", err)
		}
	} else {
		st.AvgPurchasePrice = 0
	}

	a := New(opts...)
	a.st = st
	return a, nil
}

func (a *Account) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st
}

// Save persists the current state through the configured PersistFunc.
func (a *Account) Save() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveLocked()
}

func (a *Account) saveLocked() error {
	if a.persist == nil {
		return nil
	}
	if err := a.persist(a.st); err != nil {
		a.log.Warn("save gold account failed", zap.Error(err))
		return accounting.Persisted(err)
	}
	return nil
}

// SetBalance replaces the cash balance. It is not additive.
func (a *Account) SetBalance(amount float64) error {
	if err := accounting.ValidateAmount(amount); err != nil {
		return fmt.Errorf("set balance: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.st.Balance = amount
	return a.saveLocked()
}

// SetBalanceString parses amount and replaces the cash balance.
func (a *Account) SetBalanceString(amount string) error {
	v, err := accounting.ParseAmount(amount)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return a.SetBalance(v)
}

// Buy spends amount of the balance on gold at price per ounce.
//
// The returned error wraps accounting.ErrPersistence when the purchase was
// applied but could not be saved; any other error means nothing changed.
func (a *Account) Buy(amount, price float64) (Purchase, error) {
	if err := accounting.ValidateAmount(amount); err != nil {
		return Purchase{}, fmt.Errorf("buy gold: %w", err)
	}
	if amount <= 0 {
		return Purchase{}, fmt.Errorf("buy gold: %w: %v must be positive", accounting.ErrInvalidAmount, amount)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Funds first, then the price.
	if amount > a.st.Balance {
		return Purchase{}, fmt.Errorf("buy gold: %w: %.2f exceeds balance %.2f",
			accounting.ErrInsufficientFunds, amount, a.st.Balance)
	}
	if err := accounting.ValidatePrice(price); err != nil || price == 0 {
		return Purchase{}, fmt.Errorf("buy gold: %w: %v", accounting.ErrInvalidPrice, price)
	}

	units := amount / price
	a.st.AvgPurchasePrice = accounting.AverageCost(a.st.GoldOwned, a.st.AvgPurchasePrice, units, price)
	a.st.GoldOwned += units
	a.st.Balance -= amount

	p := Purchase{
		TradeID: a.recordLocked(journal.SideBuy, units, price, amount),
		Units:   units,
		Price:   price,
		Amount:  amount,
	}
	return p, a.saveLocked()
}

// QuoteFunc prices a liquidation of owned ounces bought at avg.
type QuoteFunc func(owned, avg float64) (price float64, err error)

// Liquidate sells the whole holding at the price returned by quote. The
// quote runs under the account lock so no other mutation can interleave;
// the account is mutated and saved once, after quote returns.
func (a *Account) Liquidate(quote QuoteFunc) (Liquidation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.st.GoldOwned == 0 {
		return Liquidation{}, fmt.Errorf("liquidate gold: %w", accounting.ErrNoHoldings)
	}

	owned := a.st.GoldOwned
	price, err := quote(owned, a.st.AvgPurchasePrice)
	if err != nil {
		return Liquidation{}, fmt.Errorf("liquidate gold: %w", err)
	}
	if err := accounting.ValidatePrice(price); err != nil {
		return Liquidation{}, fmt.Errorf("liquidate gold: %w", err)
	}

	cash := owned * price
	a.st.Balance += cash
	a.st.GoldOwned = 0
	a.st.AvgPurchasePrice = 0

	l := Liquidation{
		TradeID:      a.recordLocked(journal.SideLiquidate, owned, price, cash),
		Units:        owned,
		Price:        price,
		CashReceived: cash,
	}
	return l, a.saveLocked()
}

// Reset zeroes the balance and the holding.
func (a *Account) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.st = State{}
	return a.saveLocked()
}

func (a *Account) recordLocked(side string, units, price, amount float64) string {
	at := a.now()
	tradeID := id.NewAt(at)

	err := a.journal.RecordTrade(journal.TradeRecord{
		TradeID:   tradeID,
		Account:   journal.AccountGold,
		Symbol:    Symbol,
		Side:      side,
		Quantity:  units,
		Price:     price,
		Amount:    amount,
		CashAfter: a.st.Balance,
		Time:      at,
	})
	if err != nil {
		a.log.Warn("journal gold trade failed", zap.String("trade_id", tradeID), zap.Error(err))
	}
	return tradeID
}
