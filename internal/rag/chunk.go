// Package rag answers free-text questions about the transaction set by
// retrieving relevant records from a local vector index and grounding a
// Gemini answer on them. Embedding, vector search and generation are
// external: chromem-go holds the index, Gemini produces embeddings and
// answers.
package rag

import (
	"fmt"
	"strings"

	"upilens/internal/core"
)

// Chunk is one indexable unit of text with its metadata.
type Chunk struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// TransactionChunk renders the stable textual representation of a
// transaction used for embedding. The field layout is part of the
// retrieval contract: the exact-match passes scan for these lines.
func TransactionChunk(tx core.Transaction) Chunk {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Date: %s\n", tx.Date)
	if tx.Time != "" {
		fmt.Fprintf(&sb, "Time: %s\n", tx.Time)
	}
	fmt.Fprintf(&sb, "Counterparty: %s\n", tx.Counterparty)
	fmt.Fprintf(&sb, "Amount: ₹%s\n", tx.Amount.StringFixed(2))
	fmt.Fprintf(&sb, "Direction: %s\n", tx.Direction)
	fmt.Fprintf(&sb, "Category: %s", tx.Category)
	if tx.UPIRef != "" {
		fmt.Fprintf(&sb, "\nUPI Transaction ID: %s", tx.UPIRef)
	}

	return Chunk{
		ID:      tx.ID,
		Content: sb.String(),
		Metadata: map[string]string{
			"kind":     "transaction",
			"date":     tx.Date.String(),
			"category": tx.Category,
		},
	}
}

// SummaryChunk renders a monthly summary so month-level questions can be
// answered without aggregating at query time.
func SummaryChunk(s core.MonthlySummary) Chunk {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Monthly summary for %s\n", s.Month)
	fmt.Fprintf(&sb, "Transactions: %d\n", s.Count)
	fmt.Fprintf(&sb, "Total spent: ₹%s\n", s.Debit.StringFixed(2))
	fmt.Fprintf(&sb, "Total received: ₹%s\n", s.Credit.StringFixed(2))
	for _, c := range s.ByCategory {
		fmt.Fprintf(&sb, "Spending on %s: ₹%s across %d transactions\n",
			c.Category, c.Total.StringFixed(2), c.Count)
	}

	return Chunk{
		ID:      "summary-" + s.Month,
		Content: strings.TrimRight(sb.String(), "\n"),
		Metadata: map[string]string{
			"kind":  "summary",
			"month": s.Month,
		},
	}
}
