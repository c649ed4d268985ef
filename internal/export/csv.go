// Package export writes processed transactions as CSV and reads them
// back. Exported files re-parse into the same record set.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"upilens/internal/core"
	"upilens/internal/extract"
)

// Header is the canonical export column layout.
var Header = []string{"date", "time", "amount", "direction", "counterparty", "category", "upi_ref"}

// Write renders transactions as CSV. Amounts are written with two
// decimal places, unsigned; the direction column carries the sign
// semantics.
func Write(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, tx := range txs {
		record := []string{
			tx.Date.String(),
			tx.Time,
			tx.Amount.StringFixed(2),
			string(tx.Direction),
			tx.Counterparty,
			tx.Category,
			tx.UPIRef,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read parses an exported CSV back into transactions.
func Read(r io.Reader, sourceFile string) ([]core.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	return extract.ParseCSVRows(rows, sourceFile)
}
