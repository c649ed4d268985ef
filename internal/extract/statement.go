// Package extract turns raw statement content into transaction records.
//
// Google Pay statements carry one block per calendar date; inside a block
// each transaction starts with a clock time, followed by the payee line,
// the UPI transaction id and the amount. The parser segments the cleaned
// text on those markers and recovers the fields with pattern matching.
package extract

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"upilens/internal/core"
)

var (
	dateRe   = regexp.MustCompile(`(\d{1,2})\s*([A-Z][a-z]{2}),\s*(\d{4})`)
	timeRe   = regexp.MustCompile(`\d{1,2}:\d{2}\s*[AP]M`)
	upiRe    = regexp.MustCompile(`UPI\s*Transaction\s*ID:\s*(\d+)`)
	amountRe = regexp.MustCompile(`₹\s*([\d,]+(?:\.\d{1,2})?)`)

	paidByBankRe = regexp.MustCompile(`(?i)Paid\s*(?:by|to)\s*.*Bank.*`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
)

var (
	errNoAmount = errors.New("no amount found")
	errBadDate  = errors.New("unparseable date")
)

// CleanStatementText normalizes extracted PDF text and repairs common
// extraction artifacts (words joined across line breaks).
func CleanStatementText(text string) string {
	text = strings.ReplaceAll(text, "Receivedfrom", "Received from ")
	text = strings.ReplaceAll(text, "Paidto", "Paid to ")
	text = strings.ReplaceAll(text, "Paidby", "Paid by ")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ParseStatementText extracts the ordered transaction sequence from
// cleaned statement text. A date block that contains a transaction whose
// amount cannot be recovered fails with a ParseError naming the segment.
func ParseStatementText(text, sourceFile string) ([]core.Transaction, error) {
	text = CleanStatementText(text)

	dateLocs := dateRe.FindAllStringIndex(text, -1)
	if len(dateLocs) == 0 {
		return nil, nil
	}

	var txs []core.Transaction
	segment := 0
	for i, loc := range dateLocs {
		end := len(text)
		if i+1 < len(dateLocs) {
			end = dateLocs[i+1][0]
		}
		block := text[loc[0]:end]

		date, err := parseStatementDate(text[loc[0]:loc[1]])
		if err != nil {
			return nil, newParseError(segment+1, text[loc[0]:loc[1]], err)
		}

		timeLocs := timeRe.FindAllStringIndex(block, -1)
		for j, tloc := range timeLocs {
			segment++
			tEnd := len(block)
			if j+1 < len(timeLocs) {
				tEnd = timeLocs[j+1][0]
			}
			seg := block[tloc[0]:tEnd]

			tx, err := parseSegment(seg, date, block[tloc[0]:tloc[1]], sourceFile)
			if err != nil {
				return nil, newParseError(segment, seg, err)
			}
			txs = append(txs, tx)
		}
	}

	return core.Dedupe(txs), nil
}

// parseSegment recovers one transaction from a time-delimited segment of
// a date block.
func parseSegment(seg string, date core.Date, clock, sourceFile string) (core.Transaction, error) {
	amountMatch := amountRe.FindStringSubmatch(seg)
	if amountMatch == nil {
		return core.Transaction{}, errNoAmount
	}
	amount, err := core.ParseAmount(amountMatch[1])
	if err != nil {
		return core.Transaction{}, err
	}

	upiRef := ""
	upiMatch := upiRe.FindStringSubmatch(seg)
	if upiMatch != nil {
		upiRef = upiMatch[1]
	}

	direction := core.Debit
	if strings.Contains(seg, "Received from") {
		direction = core.Credit
	}

	// Strip the recognized fields; what remains is the payee line.
	desc := strings.Replace(seg, clock, "", 1)
	if upiMatch != nil {
		desc = strings.Replace(desc, upiMatch[0], "", 1)
	}
	desc = strings.Replace(desc, amountMatch[0], "", 1)
	desc = strings.ReplaceAll(desc, "₹", "")
	desc = paidByBankRe.ReplaceAllString(desc, "")
	desc = strings.ReplaceAll(desc, "Received from", "")
	desc = strings.ReplaceAll(desc, "Paid to", "")
	desc = strings.TrimSpace(desc)

	return core.Transaction{
		Date:         date,
		Time:         normalizeClock(clock),
		Amount:       amount,
		Direction:    direction,
		Counterparty: CleanCounterparty(desc),
		RawDesc:      desc,
		UPIRef:       upiRef,
		SourceFile:   sourceFile,
	}, nil
}

// parseStatementDate parses the "12 Oct, 2025" block headers.
func parseStatementDate(s string) (core.Date, error) {
	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return core.Date{}, errBadDate
	}
	day, err := strconv.Atoi(m[1])
	if err != nil {
		return core.Date{}, errBadDate
	}
	month, err := time.Parse("Jan", m[2])
	if err != nil {
		return core.Date{}, errBadDate
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return core.Date{}, errBadDate
	}
	d := core.NewDate(year, int(month.Month()), day)
	if d.Day() != day {
		// time.Date normalized an out-of-range day, e.g. "31 Feb".
		return core.Date{}, errBadDate
	}
	return d, nil
}

// normalizeClock pads "7:45 PM" to the "07:45 PM" form used everywhere
// downstream.
func normalizeClock(clock string) string {
	clock = strings.TrimSpace(clock)
	if len(clock) > 0 && clock[1] == ':' {
		clock = "0" + clock
	}
	return clock
}
