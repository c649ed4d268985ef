package rag

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"upilens/internal/core"
)

// directAnswer tries to answer the question from the transaction set
// alone, without calling the model. It covers the lookups the model
// tends to get wrong: exact UPI references, exact amounts and
// first/last transaction questions. Returns ok=false when the question
// needs retrieval.
func directAnswer(question string, txs []core.Transaction) (string, bool) {
	if len(txs) == 0 {
		return "", false
	}
	q := strings.ToLower(question)

	if ref := firstUPIRef(question); ref != "" {
		if tx, found := byUPIRef(txs, ref); found {
			return describeTransaction(tx), true
		}
		return fmt.Sprintf("No transaction with UPI reference %s was found.", ref), true
	}

	if strings.Contains(q, "first transaction") {
		return "Your first recorded transaction: " + describeTransaction(earliest(txs)), true
	}
	if strings.Contains(q, "last transaction") || strings.Contains(q, "latest transaction") ||
		strings.Contains(q, "most recent transaction") {
		return "Your most recent transaction: " + describeTransaction(latest(txs)), true
	}

	if amt, ok := questionAmount(question); ok && asksWhoOrWhen(q) {
		matches := byAmount(txs, amt)
		switch len(matches) {
		case 0:
			return fmt.Sprintf("No transaction of ₹%s was found.", amt.StringFixed(2)), true
		case 1:
			return describeTransaction(matches[0]), true
		default:
			var sb strings.Builder
			fmt.Fprintf(&sb, "Found %d transactions of ₹%s:\n", len(matches), amt.StringFixed(2))
			for _, tx := range matches {
				sb.WriteString("- " + describeTransaction(tx) + "\n")
			}
			return strings.TrimRight(sb.String(), "\n"), true
		}
	}

	return "", false
}

func firstUPIRef(question string) string {
	return upiIDRe.FindString(question)
}

func questionAmount(question string) (decimal.Decimal, bool) {
	m := amountRe.FindStringSubmatch(question)
	if m == nil {
		return decimal.Zero, false
	}
	raw := strings.ReplaceAll(m[1], ",", "")
	if len(raw) >= 10 && !strings.Contains(raw, ".") {
		return decimal.Zero, false
	}
	amt, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return amt, true
}

func asksWhoOrWhen(q string) bool {
	for _, marker := range []string{"who", "whom", "when", "where", "which", "did i"} {
		if strings.Contains(q, marker) {
			return true
		}
	}
	return false
}

func byUPIRef(txs []core.Transaction, ref string) (core.Transaction, bool) {
	for _, tx := range txs {
		if tx.UPIRef == ref {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

func byAmount(txs []core.Transaction, amt decimal.Decimal) []core.Transaction {
	var out []core.Transaction
	for _, tx := range txs {
		if tx.Amount.Equal(amt) {
			out = append(out, tx)
		}
	}
	return out
}

func earliest(txs []core.Transaction) core.Transaction {
	sorted := sortedByDate(txs)
	return sorted[0]
}

func latest(txs []core.Transaction) core.Transaction {
	sorted := sortedByDate(txs)
	return sorted[len(sorted)-1]
}

func sortedByDate(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		ti, iok := parseClock(out[i].Time)
		tj, jok := parseClock(out[j].Time)
		if !iok || !jok {
			// keep statement order when a clock label is missing
			return false
		}
		return ti.Before(tj)
	})
	return out
}

// parseClock parses the "03:04 PM" labels carried by statement entries.
// Comparing the raw strings would put "01:00 PM" before "09:00 AM".
func parseClock(clock string) (time.Time, bool) {
	t, err := time.Parse("03:04 PM", clock)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func describeTransaction(tx core.Transaction) string {
	verb := "paid ₹%s to %s"
	if tx.Direction == core.Credit {
		verb = "received ₹%s from %s"
	}
	s := fmt.Sprintf("You "+verb+" on %s", tx.Amount.StringFixed(2), tx.Counterparty, tx.Date)
	if tx.Time != "" {
		s += " at " + tx.Time
	}
	if tx.Category != "" {
		s += " (" + tx.Category + ")"
	}
	return s + "."
}
