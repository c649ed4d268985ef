// Package ports declares the outbound interfaces the HTTP layer and the
// index worker consume. Implementations live in internal/storage (SQLite)
// and internal/memstore (in-memory).
package ports

import (
	"context"

	"upilens/internal/core"
)

type (
	// DocumentWriter records upload bookkeeping and parsed transactions.
	DocumentWriter interface {
		CreateDocument(ctx context.Context, doc core.Document) error
		MarkDocumentParsed(ctx context.Context, documentID string, txCount int) error
		MarkDocumentFailed(ctx context.Context, documentID string, cause error) error
		MarkDocumentIndexed(ctx context.Context, documentID string) error
		InsertTransactions(ctx context.Context, documentID string, txs []core.Transaction) error
	}

	// DocumentReader lists upload bookkeeping records.
	DocumentReader interface {
		GetDocument(ctx context.Context, documentID string) (core.Document, error)
		ListDocuments(ctx context.Context) ([]core.Document, error)
	}

	// TransactionReader returns stored transactions in statement order.
	TransactionReader interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		TransactionsByDocument(ctx context.Context, documentID string) ([]core.Transaction, error)
	}

	// Store is the full storage surface.
	Store interface {
		DocumentWriter
		DocumentReader
		TransactionReader
	}
)
