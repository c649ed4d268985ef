// Package insights derives the dashboard's summary views from a
// transaction sequence. All functions are pure and empty-input safe:
// an empty transaction set produces empty summaries, never an error.
package insights

import (
	"sort"

	"github.com/shopspring/decimal"

	"upilens/internal/core"
)

// Daily aggregates transactions per calendar day, ordered by date.
func Daily(txs []core.Transaction) []core.DailySummary {
	byDay := make(map[string]*core.DailySummary)
	for _, tx := range txs {
		key := tx.Date.String()
		s, ok := byDay[key]
		if !ok {
			s = &core.DailySummary{Date: tx.Date}
			byDay[key] = s
		}
		s.Count++
		if tx.Direction == core.Debit {
			s.Debit = s.Debit.Add(tx.Amount)
		} else {
			s.Credit = s.Credit.Add(tx.Amount)
		}
		s.Net = s.Credit.Sub(s.Debit)
	}

	out := make([]core.DailySummary, 0, len(byDay))
	for _, s := range byDay {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}

// Monthly aggregates transactions per calendar month, ordered by month
// key, each with its own category breakdown of spending.
func Monthly(txs []core.Transaction) []core.MonthlySummary {
	byMonth := make(map[string][]core.Transaction)
	for _, tx := range txs {
		key := tx.Date.MonthKey()
		byMonth[key] = append(byMonth[key], tx)
	}

	out := make([]core.MonthlySummary, 0, len(byMonth))
	for month, monthTxs := range byMonth {
		s := core.MonthlySummary{Month: month, Count: len(monthTxs)}
		for _, tx := range monthTxs {
			if tx.Direction == core.Debit {
				s.Debit = s.Debit.Add(tx.Amount)
			} else {
				s.Credit = s.Credit.Add(tx.Amount)
			}
		}
		s.Net = s.Credit.Sub(s.Debit)
		s.ByCategory = ByCategory(monthTxs)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// ByCategory aggregates spending (debits) per category, ordered by total
// descending. Credits do not count toward spending.
func ByCategory(txs []core.Transaction) []core.CategorySummary {
	byCat := make(map[string]*core.CategorySummary)
	for _, tx := range txs {
		if tx.Direction != core.Debit {
			continue
		}
		cat := tx.Category
		if cat == "" {
			cat = core.FallbackCategory
		}
		s, ok := byCat[cat]
		if !ok {
			s = &core.CategorySummary{Category: cat}
			byCat[cat] = s
		}
		s.Count++
		s.Total = s.Total.Add(tx.Amount)
		if tx.Amount.GreaterThan(s.Max) {
			s.Max = tx.Amount
		}
	}

	out := make([]core.CategorySummary, 0, len(byCat))
	for _, s := range byCat {
		if s.Count > 0 {
			s.Average = s.Total.DivRound(decimal.NewFromInt(int64(s.Count)), 2)
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out
}
