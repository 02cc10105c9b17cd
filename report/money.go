// Package report formats portfolio state as markdown for the terminal.
package report

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money formats amount in currency, e.g. $1,234.56. Unknown currencies
// fall back to a plain two decimal number.
func Money(amount float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%.2f %s", amount, currency)
	}

	factor := decimal.New(1, int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// Percent formats a percentage with two decimals and a sign.
func Percent(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}

// Ounces formats a gold quantity.
func Ounces(oz float64) string {
	return fmt.Sprintf("%.4f oz", oz)
}
