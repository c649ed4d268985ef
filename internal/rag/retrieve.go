package rag

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

var (
	upiIDRe  = regexp.MustCompile(`\b\d{10,}\b`)
	amountRe = regexp.MustCompile(`₹?\s*(\d+(?:,\d{3})*(?:\.\d{1,2})?)\b`)
	wordRe   = regexp.MustCompile(`\b[A-Z][A-Za-z]{2,}\b`)
)

// question words that start with a capital only because of sentence
// position, never useful as exact-match terms
var stopTerms = map[string]struct{}{
	"What": {}, "When": {}, "Where": {}, "Which": {}, "Who": {},
	"How": {}, "Why": {}, "Did": {}, "Show": {}, "List": {},
	"Give": {}, "Tell": {}, "The": {}, "Was": {}, "Were": {},
	"Total": {}, "Transaction": {}, "Transactions": {},
}

// querySignals are the exact-match terms pulled out of a question.
// UPI references outrank amounts, amounts outrank merchant keywords.
type querySignals struct {
	UPIRefs  []string
	Amounts  []string
	Keywords []string
}

func extractSignals(question string) querySignals {
	var s querySignals
	s.UPIRefs = upiIDRe.FindAllString(question, -1)

	for _, m := range amountRe.FindAllStringSubmatch(question, -1) {
		// bare long digit runs are UPI ids, not amounts
		if len(m[1]) >= 10 && !strings.Contains(m[1], ".") && !strings.Contains(m[1], ",") {
			continue
		}
		s.Amounts = append(s.Amounts, m[1])
	}

	for _, w := range wordRe.FindAllString(question, -1) {
		if _, skip := stopTerms[w]; skip {
			continue
		}
		s.Keywords = append(s.Keywords, w)
	}
	return s
}

// Retrieve combines exact-match passes with semantic search. Chunks that
// match a UPI reference or amount from the question verbatim are ranked
// above purely semantic neighbours, then the result is capped at finalK.
func Retrieve(ctx context.Context, idx *Index, question string, topK, finalK int) ([]Hit, error) {
	semantic, err := idx.Query(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	signals := extractSignals(question)
	var exact []Hit
	for _, ref := range signals.UPIRefs {
		exact = appendExact(ctx, idx, exact, question, "UPI Transaction ID: "+ref)
	}
	for _, amt := range signals.Amounts {
		exact = appendExact(ctx, idx, exact, question, "Amount: ₹"+normalizeAmount(amt))
	}
	for _, kw := range signals.Keywords {
		exact = appendExact(ctx, idx, exact, question, kw)
	}

	seen := make(map[string]struct{}, len(exact)+len(semantic))
	merged := make([]Hit, 0, finalK)
	for _, h := range exact {
		if _, dup := seen[h.ID]; dup {
			continue
		}
		seen[h.ID] = struct{}{}
		merged = append(merged, h)
	}

	sort.SliceStable(semantic, func(i, j int) bool {
		return semantic[i].Similarity > semantic[j].Similarity
	})
	for _, h := range semantic {
		if _, dup := seen[h.ID]; dup {
			continue
		}
		seen[h.ID] = struct{}{}
		merged = append(merged, h)
	}

	if len(merged) > finalK {
		merged = merged[:finalK]
	}
	return merged, nil
}

// appendExact runs a contains-filtered query and folds the hits in.
// A term that matches nothing is not an error, just an empty pass.
func appendExact(ctx context.Context, idx *Index, acc []Hit, question, term string) []Hit {
	hits, err := idx.QueryContaining(ctx, question, term, 5)
	if err != nil {
		return acc
	}
	return append(acc, hits...)
}

// normalizeAmount renders a question amount the way chunks render it,
// two decimal places and no thousands separators.
func normalizeAmount(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	if i := strings.Index(s, "."); i >= 0 {
		frac := s[i+1:]
		for len(frac) < 2 {
			frac += "0"
		}
		return s[:i] + "." + frac
	}
	return s + ".00"
}
