// Package categorize assigns a spending category to each transaction
// using an ordered keyword rule scan. No ML, no external state: every
// assignment is deterministic and explainable by the rule that matched.
package categorize

import (
	"regexp"
	"strings"

	"upilens/internal/core"
)

// PersonalTransfersCategory is assigned by the name heuristic, after the
// keyword scan and before the fallback.
const PersonalTransfersCategory = "Personal Transfers"

// Keywords this short match whole words only; longer keywords match as
// substrings.
const shortKeywordLen = 3

// Counterparty words that disqualify the personal-transfer heuristic.
var genericTerms = []string{
	"GENERAL", "TRANSACTION", "PAYMENT", "TRANSFER", "UPI",
	"MONEY", "SENT", "RECEIVED", "ACCOUNT", "BANK",
}

// Business designators mark a counterparty as a company even when it is
// short enough to read like a name ("XYZ Corp"). Matched as whole words
// so "Colin Scott" stays a person.
var businessTerms = map[string]bool{
	"CO": true, "CORP": true, "CORPORATION": true, "COMPANY": true,
	"LTD": true, "LIMITED": true, "PVT": true, "INC": true, "LLP": true,
	"ENTERPRISES": true, "INDUSTRIES": true, "TRADERS": true,
	"AGENCIES": true, "SERVICES": true, "SOLUTIONS": true,
}

var nonLetterRe = regexp.MustCompile(`[^A-Z\s]`)

// Categorizer applies a Ruleset to transactions.
type Categorizer struct {
	rules    Ruleset
	shortRes map[string]*regexp.Regexp // word-boundary patterns for short keywords
}

// New builds a Categorizer, precompiling word-boundary patterns for
// short keywords.
func New(rules Ruleset) *Categorizer {
	shortRes := make(map[string]*regexp.Regexp)
	for _, r := range rules.Rules {
		for _, kw := range r.Keywords {
			kw = strings.ToUpper(kw)
			if len(kw) <= shortKeywordLen {
				if _, ok := shortRes[kw]; !ok {
					shortRes[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
				}
			}
		}
	}
	return &Categorizer{rules: rules, shortRes: shortRes}
}

// NewDefault builds a Categorizer over the embedded rule set.
func NewDefault() *Categorizer {
	return New(DefaultRuleset())
}

// Ruleset returns the active rule configuration.
func (c *Categorizer) Ruleset() Ruleset {
	return c.rules
}

// Categorize returns the category for a transaction description. The
// first matching rule in list order wins; unmatched descriptions fall
// back to the configured fallback category.
func (c *Categorizer) Categorize(description string) string {
	desc := strings.ToUpper(strings.TrimSpace(description))

	for _, rule := range c.rules.Rules {
		for _, kw := range rule.Keywords {
			kw = strings.ToUpper(kw)
			if len(kw) <= shortKeywordLen {
				if c.shortRes[kw].MatchString(desc) {
					return rule.Category
				}
			} else if strings.Contains(desc, kw) {
				return rule.Category
			}
		}
	}

	if c.rules.PersonalTransfers && looksLikePersonName(desc) {
		return PersonalTransfersCategory
	}

	return c.rules.Fallback
}

// Apply assigns a category to every transaction, returning a new slice.
// Existing categories are preserved so re-parsed exports keep their
// assignments.
func (c *Categorizer) Apply(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		if tx.Category == "" {
			tx.Category = c.Categorize(tx.Counterparty)
		}
		out[i] = tx
	}
	return out
}

// looksLikePersonName reports whether a description reads like a person's
// name: one to three words, no digits, none of the generic payment terms.
func looksLikePersonName(desc string) bool {
	if strings.ContainsAny(desc, "0123456789") {
		return false
	}
	words := strings.Fields(nonLetterRe.ReplaceAllString(desc, ""))
	if len(words) < 1 || len(words) > 3 {
		return false
	}
	for _, w := range words {
		if businessTerms[w] {
			return false
		}
	}
	for _, term := range genericTerms {
		if strings.Contains(desc, term) {
			return false
		}
	}
	return true
}
