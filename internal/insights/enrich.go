package insights

import (
	"time"

	"github.com/shopspring/decimal"
)

// Time-of-day bands used by the dashboard's spending-pattern chart.
const (
	Morning   = "Morning"
	Afternoon = "Afternoon"
	Evening   = "Evening"
	Night     = "Night"
	Unknown   = "Unknown"
)

// TimeOfDay bands a "03:04 PM" clock label.
func TimeOfDay(clock string) string {
	t, err := time.Parse("03:04 PM", clock)
	if err != nil {
		return Unknown
	}
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return Morning
	case h >= 12 && h < 17:
		return Afternoon
	case h >= 17 && h < 21:
		return Evening
	default:
		return Night
	}
}

var (
	bandSmall  = decimal.NewFromInt(100)
	bandMedium = decimal.NewFromInt(500)
	bandLarge  = decimal.NewFromInt(2000)
)

// AmountBand buckets an amount into the display ranges used by the
// dashboard.
func AmountBand(amount decimal.Decimal) string {
	switch {
	case amount.LessThan(bandSmall):
		return "Small (< ₹100)"
	case amount.LessThan(bandMedium):
		return "Medium (₹100-500)"
	case amount.LessThan(bandLarge):
		return "Large (₹500-2000)"
	default:
		return "Very Large (> ₹2000)"
	}
}
