package memstore

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"upilens/internal/core"
)

func doc(id string) core.Document {
	return core.Document{ID: id, Filename: id + ".pdf", Checksum: "sum-" + id}
}

func TestDocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.CreateDocument(ctx, doc("d1")); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateDocument(ctx, doc("d1")); err == nil {
		t.Fatal("duplicate id accepted")
	}

	got, err := s.GetDocument(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != core.StatusPending {
		t.Fatalf("new document status: %s", got.Status)
	}

	if err := s.MarkDocumentParsed(ctx, "d1", 3); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetDocument(ctx, "d1")
	if got.Status != core.StatusParsed || got.TxCount != 3 {
		t.Fatalf("after parse: %+v", got)
	}

	if err := s.MarkDocumentIndexed(ctx, "d1"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetDocument(ctx, "d1")
	if got.Status != core.StatusIndexed {
		t.Fatalf("after index: %s", got.Status)
	}

	if err := s.MarkDocumentParsed(ctx, "nope", 0); err == nil {
		t.Fatal("unknown document accepted")
	}
}

func TestMarkDocumentFailed(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.CreateDocument(ctx, doc("d1"))

	if err := s.MarkDocumentFailed(ctx, "d1", context.DeadlineExceeded); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetDocument(ctx, "d1")
	if got.Status != core.StatusFailed || got.ErrorMessage == "" {
		t.Fatalf("after failure: %+v", got)
	}
}

func TestListDocumentsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.CreateDocument(ctx, doc("d1"))
	s.CreateDocument(ctx, doc("d2"))

	docs, err := s.ListDocuments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].ID != "d2" {
		t.Fatalf("ordering: %+v", docs)
	}
}

func TestTransactions(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.CreateDocument(ctx, doc("d1"))
	s.CreateDocument(ctx, doc("d2"))

	mk := func(day int, amount int64) core.Transaction {
		return core.Transaction{
			Date:         core.NewDate(2024, 1, day),
			Amount:       decimal.NewFromInt(amount),
			Direction:    core.Debit,
			Counterparty: "X",
		}
	}

	if err := s.InsertTransactions(ctx, "d2", []core.Transaction{mk(7, 100)}); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertTransactions(ctx, "d1", []core.Transaction{mk(5, 200), mk(9, 300)}); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertTransactions(ctx, "nope", nil); err == nil {
		t.Fatal("unknown document accepted")
	}

	all, err := s.ListTransactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3, got %d", len(all))
	}
	// sorted by date across documents
	if all[0].Date.Day() != 5 || all[1].Date.Day() != 7 || all[2].Date.Day() != 9 {
		t.Fatalf("date order: %+v", all)
	}

	byDoc, err := s.TransactionsByDocument(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if len(byDoc) != 2 {
		t.Fatalf("expected 2 for d1, got %d", len(byDoc))
	}
}
