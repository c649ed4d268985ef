// Package memstore is an in-memory ports.Store used by tests and the
// "memory" data backend.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"upilens/internal/core"
)

type Store struct {
	mu   sync.Mutex
	docs map[string]core.Document
	txs  map[string][]core.Transaction // by document id, statement order
	seq  []string                      // document ids in insert order
}

func New() *Store {
	return &Store{
		docs: make(map[string]core.Document),
		txs:  make(map[string][]core.Transaction),
	}
}

func (s *Store) CreateDocument(_ context.Context, doc core.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[doc.ID]; ok {
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	doc.Status = core.StatusPending
	s.docs[doc.ID] = doc
	s.seq = append(s.seq, doc.ID)
	return nil
}

func (s *Store) MarkDocumentParsed(_ context.Context, documentID string, txCount int) error {
	return s.update(documentID, func(doc *core.Document) {
		doc.Status = core.StatusParsed
		doc.TxCount = txCount
	})
}

func (s *Store) MarkDocumentFailed(_ context.Context, documentID string, cause error) error {
	return s.update(documentID, func(doc *core.Document) {
		doc.Status = core.StatusFailed
		if cause != nil {
			doc.ErrorMessage = cause.Error()
		}
	})
}

func (s *Store) MarkDocumentIndexed(_ context.Context, documentID string) error {
	return s.update(documentID, func(doc *core.Document) {
		doc.Status = core.StatusIndexed
	})
}

func (s *Store) InsertTransactions(_ context.Context, documentID string, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[documentID]; !ok {
		return fmt.Errorf("unknown document %s", documentID)
	}
	s.txs[documentID] = append(s.txs[documentID], txs...)
	return nil
}

func (s *Store) GetDocument(_ context.Context, documentID string) (core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[documentID]
	if !ok {
		return core.Document{}, fmt.Errorf("unknown document %s", documentID)
	}
	return doc, nil
}

func (s *Store) ListDocuments(_ context.Context) ([]core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Document, 0, len(s.seq))
	for i := len(s.seq) - 1; i >= 0; i-- {
		out = append(out, s.docs[s.seq[i]])
	}
	return out, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, id := range s.seq {
		out = append(out, s.txs[id]...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out, nil
}

func (s *Store) TransactionsByDocument(_ context.Context, documentID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[documentID]; !ok {
		return nil, fmt.Errorf("unknown document %s", documentID)
	}
	out := make([]core.Transaction, len(s.txs[documentID]))
	copy(out, s.txs[documentID])
	return out, nil
}

func (s *Store) update(documentID string, fn func(*core.Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[documentID]
	if !ok {
		return fmt.Errorf("unknown document %s", documentID)
	}
	fn(&doc)
	s.docs[documentID] = doc
	return nil
}
