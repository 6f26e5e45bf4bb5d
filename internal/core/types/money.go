// Package types provides common type aliases and utilities.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors; the zero value is 0.
type Money = decimal.Decimal

// PercentScale is the number of fractional digits kept on percentages.
const PercentScale int32 = 2

var hundred = decimal.NewFromInt(100)

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// NewMoney creates a Money value from a float.
// Prefer ParseMoney for values read from storage.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// ParseMoney parses a decimal string. An empty string is zero.
func ParseMoney(s string) (Money, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse money %q: %w", s, err)
	}
	return d, nil
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Sum adds all values.
func Sum(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// PercentOf returns part/whole*100 rounded to PercentScale digits.
// A non-positive whole yields 0, never a division artifact.
func PercentOf(part, whole Money) Money {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(PercentScale)
}

// Float64 converts to float64 for wire formats that require JSON numbers.
func Float64(m Money) float64 {
	return m.InexactFloat64()
}
