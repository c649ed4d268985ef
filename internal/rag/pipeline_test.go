package rag

import (
	"context"
	"crypto/sha256"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"upilens/internal/cache"
	"upilens/internal/core"
	"upilens/internal/log"
	"upilens/internal/memstore"
)

func testEmbed(_ context.Context, text string) ([]float32, error) {
	sum := sha256.Sum256([]byte(text))
	vec := make([]float32, 8)
	for i := range vec {
		vec[i] = float32(sum[i]) + 1
	}
	return vec, nil
}

func seedStore(t *testing.T, txs []core.Transaction) *memstore.Store {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	doc := core.Document{ID: "doc-1", Filename: "jan.csv", Checksum: "c1",
		Status: core.StatusPending, UploadedAt: time.Now()}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if err := store.InsertTransactions(ctx, "doc-1", txs); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkDocumentParsed(ctx, "doc-1", len(txs)); err != nil {
		t.Fatal(err)
	}
	return store
}

func newTestPipeline(t *testing.T, store *memstore.Store, idx *Index) *Pipeline {
	t.Helper()
	p := NewPipeline(Config{TopK: 10, FinalK: 5}, store, testEmbed, nil,
		cache.NewLRUCache[Answer](16, time.Minute), log.New(log.DefaultConfig()))
	p.openIndex = func() (*Index, error) { return idx, nil }
	return p
}

func TestAskEmptyQuestion(t *testing.T) {
	p := newTestPipeline(t, seedStore(t, nil), nil)
	if _, err := p.Ask(context.Background(), "   "); !errors.Is(err, ErrEmptyQuestion) {
		t.Fatalf("err: %v", err)
	}
}

func TestAskDirectAnswer(t *testing.T) {
	store := seedStore(t, []core.Transaction{{
		ID:           "tx-1",
		Date:         core.NewDate(2024, 1, 5),
		Time:         "07:45 PM",
		Amount:       decimal.NewFromInt(450),
		Direction:    core.Debit,
		Counterparty: "Swiggy",
		Category:     "Food",
		UPIRef:       "4012345678",
	}})
	p := newTestPipeline(t, store, nil)

	got, err := p.Ask(context.Background(), "what was transaction 4012345678?")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Direct {
		t.Fatal("expected a direct answer")
	}
	if !strings.Contains(got.Answer, "Swiggy") || !strings.Contains(got.Answer, "450.00") {
		t.Fatalf("answer: %q", got.Answer)
	}
	if len(got.Sources) != 0 {
		t.Fatalf("direct answers carry no sources, got %d", len(got.Sources))
	}
}

func TestAskIndexNotReady(t *testing.T) {
	idx, err := NewMemoryIndex(testEmbed)
	if err != nil {
		t.Fatal(err)
	}
	p := newTestPipeline(t, seedStore(t, nil), idx)

	_, err = p.Ask(context.Background(), "how much did I spend on food?")
	if !errors.Is(err, ErrIndexNotReady) {
		t.Fatalf("err: %v", err)
	}
}

func TestAskCachesAnswers(t *testing.T) {
	store := seedStore(t, []core.Transaction{{
		ID:           "tx-1",
		Date:         core.NewDate(2024, 1, 5),
		Amount:       decimal.NewFromInt(450),
		Direction:    core.Debit,
		Counterparty: "Swiggy",
		UPIRef:       "4012345678",
	}})
	p := newTestPipeline(t, store, nil)

	first, err := p.Ask(context.Background(), "What was transaction 4012345678?")
	if err != nil {
		t.Fatal(err)
	}

	// cache keys are case-insensitive, so this must hit without a
	// second direct-answer pass
	second, err := p.Ask(context.Background(), "WHAT WAS TRANSACTION 4012345678?")
	if err != nil {
		t.Fatal(err)
	}
	if second.Answer != first.Answer {
		t.Fatalf("cached answer mismatch: %q vs %q", second.Answer, first.Answer)
	}
}
