package ledger

import (
	"fmt"
	"math"

	"github.com/rustyeddy/investflow/accounting"
	"github.com/rustyeddy/investflow/journal"
	"github.com/rustyeddy/investflow/pkg/id"
	"go.uber.org/zap"
)

// Buy debits qty*price from cash and adds qty units to the symbol's position,
// recomputing its average cost.
//
// The returned error wraps accounting.ErrPersistence when the trade was
// applied but could not be saved; any other error means nothing changed.
func (l *Ledger) Buy(symbol string, qty, price float64) (Fill, error) {
	sym, err := validate(symbol, qty, price)
	if err != nil {
		return Fill{}, fmt.Errorf("buy: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cost := qty * price
	if cost > l.cash {
		return Fill{}, fmt.Errorf("buy %s: %w: cost %.2f exceeds cash %.2f",
			sym, accounting.ErrInsufficientFunds, cost, l.cash)
	}

	pos, ok := l.positions[sym]
	if !ok {
		pos = &Position{}
		l.positions[sym] = pos
	}
	l.cash -= cost
	pos.AverageCost = accounting.AverageCost(pos.Quantity, pos.AverageCost, qty, price)
	pos.Quantity += qty

	fill := l.recordLocked(sym, journal.SideBuy, qty, price, cost)
	fill.Position = *pos
	return fill, l.saveLocked()
}

// Sell removes qty units from the symbol's position and credits qty*price to
// cash. The average cost of the remaining units is unchanged; a position
// sold down to zero is removed.
func (l *Ledger) Sell(symbol string, qty, price float64) (Fill, error) {
	sym, err := validate(symbol, qty, price)
	if err != nil {
		return Fill{}, fmt.Errorf("sell: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[sym]
	if !ok {
		return Fill{}, fmt.Errorf("sell %s: %w", sym, accounting.ErrUnknownPosition)
	}
	full := soldOut(pos.Quantity, qty)
	if qty > pos.Quantity && !full {
		return Fill{}, fmt.Errorf("sell %s: %w: have %v, want %v",
			sym, accounting.ErrInsufficientShares, pos.Quantity, qty)
	}
	if full {
		qty = pos.Quantity
	}

	proceeds := qty * price
	pos.Quantity -= qty
	l.cash += proceeds

	var remaining Position
	if full {
		delete(l.positions, sym)
	} else {
		remaining = *pos
	}

	fill := l.recordLocked(sym, journal.SideSell, qty, price, proceeds)
	fill.Position = remaining
	return fill, l.saveLocked()
}

// dustTolerance is the relative gap under which a sale counts as selling the
// whole position.
const dustTolerance = 1e-9

// soldOut reports whether selling qty of a holding of held units leaves only
// floating point dust, e.g. 0.1+0.2 bought and 0.3 sold.
func soldOut(held, qty float64) bool {
	return math.Abs(held-qty) <= dustTolerance*held
}

func validate(symbol string, qty, price float64) (string, error) {
	sym, err := accounting.NormalizeSymbol(symbol)
	if err != nil {
		return "", err
	}
	if err := accounting.ValidateQuantity(qty); err != nil {
		return "", err
	}
	if err := accounting.ValidatePrice(price); err != nil {
		return "", err
	}
	return sym, nil
}

func (l *Ledger) recordLocked(sym, side string, qty, price, amount float64) Fill {
	at := l.now()
	fill := Fill{
		TradeID:  id.NewAt(at),
		Symbol:   sym,
		Side:     side,
		Quantity: qty,
		Price:    price,
		Amount:   amount,
		Cash:     l.cash,
	}

	err := l.journal.RecordTrade(journal.TradeRecord{
		TradeID:   fill.TradeID,
		Account:   journal.AccountPortfolio,
		Symbol:    sym,
		Side:      side,
		Quantity:  qty,
		Price:     price,
		Amount:    amount,
		CashAfter: l.cash,
		Time:      at,
	})
	if err != nil {
		l.log.Warn("journal trade failed",
			zap.String("trade_id", fill.TradeID),
			zap.String("symbol", sym),
			zap.Error(err))
	}
	return fill
}
