package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func validTransaction() Transaction {
	return Transaction{
		Date:         NewDate(2024, 1, 5),
		Time:         "07:45 PM",
		Amount:       decimal.NewFromInt(450),
		Direction:    Debit,
		Counterparty: "Swiggy Order",
	}
}

func TestTransactionValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"valid", func(tx *Transaction) {}, nil},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrZeroDate},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-1) }, ErrInvalidAmount},
		{"bad direction", func(tx *Transaction) { tx.Direction = "sideways" }, ErrInvalidDirection},
		{"blank counterparty", func(tx *Transaction) { tx.Counterparty = "  " }, ErrEmptyCounterparty},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			err := tx.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	cases := []struct {
		in  string
		out Direction
		ok  bool
	}{
		{"debit", Debit, true},
		{"Debit", Debit, true},
		{"PAID", Debit, true},
		{"sent", Debit, true},
		{"dr", Debit, true},
		{"credit", Credit, true},
		{" Received ", Credit, true},
		{"cr", Credit, true},
		{"", "", false},
		{"transfer", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDirection(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestSigned(t *testing.T) {
	tx := validTransaction()
	if got := tx.Signed(); !got.Equal(decimal.NewFromInt(-450)) {
		t.Fatalf("debit should be negative, got %s", got)
	}
	tx.Direction = Credit
	if got := tx.Signed(); !got.Equal(decimal.NewFromInt(450)) {
		t.Fatalf("credit should be positive, got %s", got)
	}
}

func TestDedupe(t *testing.T) {
	a := validTransaction()
	b := validTransaction() // same key as a
	c := validTransaction()
	c.Time = "08:00 PM"

	out := Dedupe([]Transaction{a, b, c})
	if len(out) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(out))
	}
	if out[0].Time != "07:45 PM" || out[1].Time != "08:00 PM" {
		t.Fatalf("statement order not preserved: %+v", out)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-05")
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "2024-01-05" {
		t.Fatalf("round trip failed: %s", d)
	}
	if d.MonthKey() != "2024-01" {
		t.Fatalf("month key: %s", d.MonthKey())
	}
	if _, err := ParseDate("05/01/2024"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}
