package core

import "github.com/shopspring/decimal"

// CategorySummary aggregates spending for one category.
type CategorySummary struct {
	Category string
	Count    int
	Total    decimal.Decimal
	Average  decimal.Decimal
	Max      decimal.Decimal
}

// DailySummary aggregates one calendar day.
type DailySummary struct {
	Date     Date
	Count    int
	Debit    decimal.Decimal
	Credit   decimal.Decimal
	Net      decimal.Decimal // credit minus debit
}

// MonthlySummary aggregates one calendar month, keyed "2006-01".
type MonthlySummary struct {
	Month      string
	Count      int
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	Net        decimal.Decimal
	ByCategory []CategorySummary
}
