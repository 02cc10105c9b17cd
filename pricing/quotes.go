package pricing

import (
	"sort"
	"sync"
	"time"
)

// Direction compares a quote with the one before it.
type Direction string

const (
	DirectionNew  Direction = "new"
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Arrow returns the marker shown next to a live price.
func (d Direction) Arrow() string {
	switch d {
	case DirectionUp:
		return "▲"
	case DirectionDown:
		return "▼"
	default:
		return ""
	}
}

type Quote struct {
	Symbol    string
	Price     float64
	Previous  float64
	Direction Direction
	Time      time.Time
}

// Change is the difference from the previous quote.
func (q Quote) Change() float64 {
	if q.Direction == DirectionNew {
		return 0
	}
	return q.Price - q.Previous
}

// Quotes keeps the last quote per symbol.
type Quotes struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewQuotes() *Quotes {
	return &Quotes{quotes: make(map[string]Quote)}
}

// Update records price for symbol and returns the quote with its direction
// relative to the previous one.
func (qs *Quotes) Update(symbol string, price float64, at time.Time) Quote {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	q := Quote{Symbol: symbol, Price: price, Direction: DirectionNew, Time: at}
	if prev, ok := qs.quotes[symbol]; ok {
		q.Previous = prev.Price
		switch {
		case price > prev.Price:
			q.Direction = DirectionUp
		case price < prev.Price:
			q.Direction = DirectionDown
		default:
			q.Direction = DirectionFlat
		}
	}
	qs.quotes[symbol] = q
	return q
}

func (qs *Quotes) Get(symbol string) (Quote, bool) {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	q, ok := qs.quotes[symbol]
	return q, ok
}

// All returns every quote ordered by symbol.
func (qs *Quotes) All() []Quote {
	qs.mu.RLock()
	defer qs.mu.RUnlock()

	out := make([]Quote, 0, len(qs.quotes))
	for _, q := range qs.quotes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
