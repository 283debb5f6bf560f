package repository

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// parseDecimal converts a NUMERIC column read through a NullString
// (needed on LEFT JOINs) into a decimal value.
func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse numeric %q: %w", s, err)
	}
	return d, nil
}
