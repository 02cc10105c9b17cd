package accounting

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrUnknownPosition    = errors.New("unknown position")
	ErrNoHoldings         = errors.New("no holdings")
	ErrInvalidPrice       = errors.New("invalid price")

	// ErrPersistence is returned alongside a completed mutation when the new
	// state could not be saved. The in-memory change is kept.
	ErrPersistence = errors.New("persistence failure")

	// ErrPriceUnavailable means the dependent operation must be skipped.
	ErrPriceUnavailable = errors.New("price unavailable")
)

// ErrInvalidAmount is an ErrInvalidInput raised for cash amounts.
var ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrInvalidInput)

// Persisted wraps a save failure so callers can tell that the operation
// itself was applied.
func Persisted(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
