// Package core provides money parsing and handling utilities.
//
// Amounts are carried as decimal.Decimal end to end so that values
// persisted and reloaded compare equal digit for digit.
package core

import (
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to a positive decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Signs, exponents, thousands separators and zero are rejected.
//
// Examples:
//
//	ParseAmount("15000")  -> 15000, nil
//	ParseAmount("12,50")  -> 12.5, nil
//	ParseAmount("-1")     -> error
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
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrInvalidAmount
	}
	if parts[0] == "" && (len(parts) == 1 || parts[1] == "") {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return decimal.Zero, ErrInvalidAmount
			}
		}
	}
	if parts[0] == "" {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// AmountFromFloat guards decimal.NewFromFloat, which panics on NaN and Inf.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	return decimal.NewFromFloat(f), nil
}

// Float returns the amount as a float64 for display and percentages.
// Sums and comparisons stay in decimal.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
