package extract

import (
	"regexp"
	"strings"
)

// Patterns stripped from payee lines before categorization. Order matters:
// prefixes first, then trailing noise.
var counterpartyNoise = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^To\s+`),
	regexp.MustCompile(`(?i)^From\s+`),
	regexp.MustCompile(`(?i)^UPI\s+`),
	regexp.MustCompile(`\s+-\s+.*$`),  // everything after a dash
	regexp.MustCompile(`\s+\d{10,}$`), // trailing phone numbers
	regexp.MustCompile(`\s+@\w+$`),    // trailing UPI handles
}

const maxCounterpartyLen = 50

// CleanCounterparty extracts a clean merchant or payee name from a raw
// payee line.
func CleanCounterparty(desc string) string {
	desc = strings.TrimSpace(desc)
	for _, re := range counterpartyNoise {
		desc = re.ReplaceAllString(desc, "")
	}
	if len(desc) > maxCounterpartyLen {
		desc = desc[:maxCounterpartyLen]
	}
	return strings.TrimSpace(desc)
}
