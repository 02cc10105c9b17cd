// Package ledger tracks a cash balance and a set of stock positions valued at
// their weighted average cost.
package ledger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rustyeddy/investflow/accounting"
	"github.com/rustyeddy/investflow/journal"
	"go.uber.org/zap"
)

// DefaultCash is the starting cash of a fresh portfolio.
const DefaultCash = 10000.0

type Position struct {
	Quantity    float64 `json:"qty"`
	AverageCost float64 `json:"avg"`
}

// Snapshot is the persisted form of a Ledger.
type Snapshot struct {
	Cash      float64             `json:"cash"`
	Positions map[string]Position `json:"positions"`
}

// Fill describes an executed buy or sell.
type Fill struct {
	TradeID  string
	Symbol   string
	Side     string
	Quantity float64
	Price    float64
	Amount   float64
	Cash     float64  // cash after the trade
	Position Position // zero when the position was closed
}

// PersistFunc saves a ledger snapshot. It runs while the ledger is locked.
type PersistFunc func(Snapshot) error

type Ledger struct {
	mu        sync.Mutex
	cash      float64
	positions map[string]*Position

	persist PersistFunc
	journal journal.Journal
	log     *zap.Logger
	now     func() time.Time
}

type Option func(*Ledger)

func WithPersist(fn PersistFunc) Option { return func(l *Ledger) { l.persist = fn } }

func WithJournal(j journal.Journal) Option { return func(l *Ledger) { l.journal = j } }

func WithLogger(log *zap.Logger) Option { return func(l *Ledger) { l.log = log } }

func WithClock(now func() time.Time) Option { return func(l *Ledger) { l.now = now } }

// New returns an empty ledger holding the given cash.
func New(cash float64, opts ...Option) *Ledger {
	l := &Ledger{
		cash:      cash,
		positions: make(map[string]*Position),
		journal:   journal.Discard,
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FromSnapshot rebuilds a ledger from persisted state. Zero quantity entries
// are dropped; negative or non-finite values are rejected.
func FromSnapshot(s Snapshot, opts ...Option) (*Ledger, error) {
	l := New(s.Cash, opts...)
	for sym, p := range s.Positions {
		norm, err := accounting.NormalizeSymbol(sym)
		if err != nil {
			return nil, fmt.Errorf("load position %q: %w", sym, err)
		}
		if p.Quantity == 0 {
			continue
		}
		if err := accounting.ValidateQuantity(p.Quantity); err != nil {
			return nil, fmt.Errorf("load position %s: %w", norm, err)
		}
		if err := accounting.ValidatePrice(p.AverageCost); err != nil {
			return nil, fmt.Errorf("load position %s: %w", norm, err)
		}
		pos := p
		l.positions[norm] = &pos
	}
	return l, nil
}

func (l *Ledger) Cash() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

// Position returns the holding for symbol or ErrUnknownPosition.
func (l *Ledger) Position(symbol string) (Position, error) {
	sym, err := accounting.NormalizeSymbol(symbol)
	if err != nil {
		return Position{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[sym]
	if !ok {
		return Position{}, fmt.Errorf("%w: %s", accounting.ErrUnknownPosition, sym)
	}
	return *p, nil
}

// Symbols returns the held symbols in alphabetical order.
func (l *Ledger) Symbols() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.symbolsLocked()
}

func (l *Ledger) symbolsLocked() []string {
	out := make([]string, 0, len(l.positions))
	for sym := range l.positions {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() Snapshot {
	s := Snapshot{
		Cash:      l.cash,
		Positions: make(map[string]Position, len(l.positions)),
	}
	for sym, p := range l.positions {
		s.Positions[sym] = *p
	}
	return s
}

// Save persists the current state through the configured PersistFunc.
func (l *Ledger) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saveLocked()
}

func (l *Ledger) saveLocked() error {
	if l.persist == nil {
		return nil
	}
	if err := l.persist(l.snapshotLocked()); err != nil {
		l.log.Warn("save portfolio failed", zap.Error(err))
		return accounting.Persisted(err)
	}
	return nil
}
