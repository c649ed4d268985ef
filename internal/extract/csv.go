package extract

import (
	"errors"
	"strings"

	"upilens/internal/core"
)

var (
	errMissingFields = errors.New("missing required fields")
	errShortRow      = errors.New("too few columns")
)

// Positional layout for headerless files:
// date, direction, counterparty, amount
const (
	colDate = iota
	colDirection
	colCounterparty
	colAmount
	minColumns = colAmount + 1
)

// ParseCSVRows turns statement CSV rows into transactions. The first row
// may be a header; when present, columns are mapped by name so exported
// files with extra columns (time, category, upi_ref) re-parse cleanly.
// Every valid data row yields exactly one transaction; a row whose date
// or amount cannot be recovered fails with a ParseError.
func ParseCSVRows(rows [][]string, sourceFile string) ([]core.Transaction, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	header := map[string]int{}
	dataStart := 0
	if isHeaderRow(rows[0]) {
		for i, name := range rows[0] {
			header[normalizeHeader(name)] = i
		}
		dataStart = 1
	}

	var txs []core.Transaction
	for i, row := range rows[dataStart:] {
		rowNum := dataStart + i + 1
		if isBlankRow(row) {
			continue
		}

		tx, err := parseCSVRow(row, header, sourceFile)
		if err != nil {
			return nil, newParseError(rowNum, strings.Join(row, ","), err)
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

func parseCSVRow(row []string, header map[string]int, sourceFile string) (core.Transaction, error) {
	get := func(names []string, fallback int) string {
		if len(header) > 0 {
			for _, n := range names {
				if idx, ok := header[n]; ok && idx < len(row) {
					return strings.TrimSpace(row[idx])
				}
			}
			return ""
		}
		if fallback >= 0 && fallback < len(row) {
			return strings.TrimSpace(row[fallback])
		}
		return ""
	}

	if len(header) == 0 && len(row) < minColumns {
		return core.Transaction{}, errShortRow
	}

	dateStr := get([]string{"date"}, colDate)
	amountStr := get([]string{"amount", "amount_inr"}, colAmount)
	if dateStr == "" || amountStr == "" {
		return core.Transaction{}, errMissingFields
	}

	date, err := parseFlexibleDate(dateStr)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		return core.Transaction{}, err
	}

	direction := core.Debit
	if s := get([]string{"direction", "type"}, colDirection); s != "" {
		direction, err = core.ParseDirection(s)
		if err != nil {
			return core.Transaction{}, err
		}
	}

	counterparty := get([]string{"counterparty", "description"}, colCounterparty)

	return core.Transaction{
		Date:         date,
		Time:         get([]string{"time"}, -1),
		Amount:       amount,
		Direction:    direction,
		Counterparty: CleanCounterparty(counterparty),
		RawDesc:      counterparty,
		UPIRef:       get([]string{"upi_ref", "upi_id", "upi_transaction_id"}, -1),
		Category:     get([]string{"category"}, -1),
		SourceFile:   sourceFile,
	}, nil
}

// parseFlexibleDate accepts ISO dates and the statement's "12 Oct, 2025"
// form.
func parseFlexibleDate(s string) (core.Date, error) {
	if d, err := core.ParseDate(s); err == nil {
		return d, nil
	}
	return parseStatementDate(s)
}

func isHeaderRow(row []string) bool {
	for _, cell := range row {
		if normalizeHeader(cell) == "date" {
			return true
		}
	}
	return false
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	return name
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
