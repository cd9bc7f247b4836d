// Package core provides the money, timing and limit primitives shared
// by the allocation engine and the forecast model.
//
// Monetary amounts are exact decimals (shopspring/decimal); signs
// follow the transaction convention: positive amounts are inflows to
// an account, negative amounts are outflows from it.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to an exact monetary amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns an error for empty strings, signs, or non-digit characters;
// plan files carry magnitudes only and encode direction structurally.
//
// Examples:
//   ParseAmount("1200")    -> 1200
//   ParseAmount("12,34")   -> 12.34
//   ParseAmount("0.005")   -> 0.005
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	dots := 0
	for _, r := range s {
		if r == '.' {
			dots++
			continue
		}
		if !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if dots > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount renders an amount with two decimal places for display.
// Use the decimal value itself for calculations.
func FormatAmount(v decimal.Decimal) string {
	return v.StringFixed(2)
}
