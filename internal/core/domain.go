package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

// FallbackCategory is assigned when no categorization rule matches.
const FallbackCategory = "Other"

type (
	// Direction tells whether money left or entered the account.
	// Amounts are always non-negative; direction carries the sign.
	Direction string

	Date struct {
		time.Time
	}

	// Transaction is a single statement entry. Immutable once parsed;
	// Category is assigned by the categorization pass.
	Transaction struct {
		ID           string
		Date         Date
		Time         string // optional clock label, e.g. "07:45 PM"
		Amount       decimal.Decimal
		Direction    Direction
		Counterparty string
		RawDesc      string
		UPIRef       string
		Category     string
		SourceFile   string
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDirection  = errors.New("invalid direction")
	ErrEmptyCounterparty = errors.New("empty counterparty")
	ErrZeroDate          = errors.New("date cannot be zero")
)

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MonthKey returns the "2006-01" key used by monthly summaries.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (dir Direction) Validate() error {
	switch dir {
	case Debit, Credit:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidDirection, string(dir))
}

// ParseDirection maps statement wording to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debit", "paid", "sent", "spent", "dr":
		return Debit, nil
	case "credit", "received", "cr":
		return Credit, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Signed returns the amount with direction applied: debits negative,
// credits positive.
func (t Transaction) Signed() decimal.Decimal {
	if t.Direction == Debit {
		return t.Amount.Neg()
	}
	return t.Amount
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Direction.Validate(); err != nil {
		return err
	}
	if t.Amount.IsNegative() || t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Counterparty) == "" {
		return ErrEmptyCounterparty
	}
	return nil
}

// DedupeKey identifies a transaction for duplicate removal. Statements
// occasionally repeat entries across page boundaries.
func (t Transaction) DedupeKey() string {
	return t.Date.String() + "|" + t.Time + "|" + t.Amount.StringFixed(2) + "|" + t.Counterparty
}

// Dedupe removes duplicate transactions, keeping first occurrences and
// preserving statement order.
func Dedupe(txs []Transaction) []Transaction {
	seen := make(map[string]struct{}, len(txs))
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		k := t.DedupeKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}
