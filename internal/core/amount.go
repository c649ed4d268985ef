// Package core provides the transaction domain model and amount parsing.
//
// This file contains functions for normalizing statement amount strings
// into fixed-point decimals.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount normalizes a statement amount string into a decimal.
//
// It tolerates the formatting variance seen in exported statements:
// currency markers (₹, Rs., INR), thousands separators, surrounding
// whitespace and a decimal comma. The result is always positive;
// direction is carried separately.
//
// Examples:
//
//	ParseAmount("₹1,250.00") -> 1250.00
//	ParseAmount("Rs. 450")   -> 450
//	ParseAmount("12,34")     -> 12.34
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	for _, marker := range []string{"₹", "Rs.", "Rs", "INR"} {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Sign conventions belong to Direction, not the amount.
		return decimal.Zero, ErrInvalidAmount
	}

	// "1,234.56" uses comma as thousands separator; "12,34" uses it as
	// a decimal comma. A comma is decimal only when it is the sole
	// separator and not followed by exactly three digits.
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		idx := strings.LastIndex(s, ",")
		if strings.Count(s, ",") == 1 && len(s)-idx-1 != 3 {
			s = s[:idx] + "." + s[idx+1:]
		}
	}
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() || d.IsZero() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatINR renders an amount as an Indian-rupee display string.
func FormatINR(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}
