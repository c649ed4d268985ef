package insights

import (
	"math"
	"sort"

	"upilens/internal/core"
)

// DefaultUnusualThreshold is the number of standard deviations above the
// mean at which a debit counts as unusual.
const DefaultUnusualThreshold = 2.0

// Unusual returns debits whose amount exceeds mean + threshold*stddev of
// all debit amounts, largest first. Statistics are computed in float64;
// they drive a display list, not money arithmetic.
func Unusual(txs []core.Transaction, threshold float64) []core.Transaction {
	var amounts []float64
	for _, tx := range txs {
		if tx.Direction == core.Debit {
			amounts = append(amounts, tx.Amount.InexactFloat64())
		}
	}
	if len(amounts) < 2 {
		return nil
	}

	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(len(amounts))

	var variance float64
	for _, a := range amounts {
		variance += (a - mean) * (a - mean)
	}
	stddev := math.Sqrt(variance / float64(len(amounts)-1))

	cutoff := mean + threshold*stddev
	var out []core.Transaction
	for _, tx := range txs {
		if tx.Direction == core.Debit && tx.Amount.InexactFloat64() > cutoff {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}
