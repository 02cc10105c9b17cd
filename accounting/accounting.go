// Package accounting holds the numeric rules shared by every account type:
// the weighted average cost basis, input validation and the error taxonomy.
package accounting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AverageCost returns the cost basis per unit after adding addedQty units at
// addedPrice to a holding of oldQty units with an average cost of oldAvg.
//
// An empty prior holding yields addedPrice unchanged.
func AverageCost(oldQty, oldAvg, addedQty, addedPrice float64) float64 {
	if oldQty == 0 {
		return addedPrice
	}
	return (oldQty*oldAvg + addedQty*addedPrice) / (oldQty + addedQty)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// ValidateQuantity rejects quantities that are not finite and strictly positive.
func ValidateQuantity(qty float64) error {
	if !finite(qty) || qty <= 0 {
		return fmt.Errorf("%w: quantity %v must be positive", ErrInvalidInput, qty)
	}
	return nil
}

// ValidatePrice rejects prices that are not finite or are negative.
func ValidatePrice(price float64) error {
	if !finite(price) || price < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, price)
	}
	return nil
}

// ValidateAmount rejects amounts that are not finite numbers.
func ValidateAmount(amount float64) error {
	if !finite(amount) {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return nil
}

// ParseAmount parses a user supplied decimal amount such as "1500" or " 12.50 ".
func ParseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if err := ValidateAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}

// NormalizeSymbol trims and uppercases a ticker symbol.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", fmt.Errorf("%w: empty symbol", ErrInvalidInput)
	}
	return s, nil
}

// Percent returns profit as a percentage of costBasis, or 0 when there is no
// cost basis to compare against.
func Percent(profit, costBasis float64) float64 {
	if costBasis > 0 {
		return profit / costBasis * 100
	}
	return 0
}
