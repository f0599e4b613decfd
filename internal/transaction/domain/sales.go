package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxSales is the first amount that no longer fits the decimal(12,2)
// sales column.
var MaxSales = decimal.New(1, 10)

// ParseSales parses a sales amount. Blank input is zero; negative or
// non-numeric input yields ErrInvalidSales. Amounts of MaxSales or more
// also wrap ErrSalesTooLarge.
func ParseSales(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidSales, raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative amount %s", ErrInvalidSales, amount)
	}
	amount = amount.Round(2)
	if amount.GreaterThanOrEqual(MaxSales) {
		return decimal.Zero, fmt.Errorf("%w: %w: %s", ErrInvalidSales, ErrSalesTooLarge, amount)
	}
	return amount, nil
}
