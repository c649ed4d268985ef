package rag

import (
	"context"
	"errors"
	"testing"
)

func testChunks() []Chunk {
	return []Chunk{
		{ID: "tx-1", Content: "Date: 2024-01-05\nCounterparty: Swiggy\nAmount: ₹450.00\nDirection: debit\nCategory: Food"},
		{ID: "tx-2", Content: "Date: 2024-01-06\nCounterparty: Rahul Kumar\nAmount: ₹1200.00\nDirection: credit\nCategory: Personal Transfers"},
		{ID: "tx-3", Content: "Date: 2024-01-07\nCounterparty: Uber\nAmount: ₹230.00\nDirection: debit\nCategory: Travel"},
	}
}

func TestIndexAddAndQuery(t *testing.T) {
	ctx := context.Background()
	idx, err := NewMemoryIndex(testEmbed)
	if err != nil {
		t.Fatal(err)
	}

	if err := idx.Add(ctx, testChunks(), 2); err != nil {
		t.Fatal(err)
	}
	if got := idx.Count(); got != 3 {
		t.Fatalf("count: %d", got)
	}

	hits, err := idx.Query(ctx, "food spending", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits: %d", len(hits))
	}
}

func TestIndexAddIdempotent(t *testing.T) {
	ctx := context.Background()
	idx, err := NewMemoryIndex(testEmbed)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(ctx, testChunks(), 1); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(ctx, testChunks(), 1); err != nil {
		t.Fatal(err)
	}
	if got := idx.Count(); got != 3 {
		t.Fatalf("count after re-add: %d", got)
	}
}

func TestIndexQueryContaining(t *testing.T) {
	ctx := context.Background()
	idx, err := NewMemoryIndex(testEmbed)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(ctx, testChunks(), 1); err != nil {
		t.Fatal(err)
	}

	hits, err := idx.QueryContaining(ctx, "who did I pay", "Counterparty: Swiggy", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "tx-1" {
		t.Fatalf("hits: %+v", hits)
	}
}

func TestIndexQueryEmpty(t *testing.T) {
	idx, err := NewMemoryIndex(testEmbed)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := idx.Query(context.Background(), "anything", 5); !errors.Is(err, ErrIndexEmpty) {
		t.Fatalf("err: %v", err)
	}
}

func TestIndexClampsK(t *testing.T) {
	ctx := context.Background()
	idx, err := NewMemoryIndex(testEmbed)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(ctx, testChunks(), 1); err != nil {
		t.Fatal(err)
	}
	hits, err := idx.Query(ctx, "everything", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Fatalf("hits: %d", len(hits))
	}
}
