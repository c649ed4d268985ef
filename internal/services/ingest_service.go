package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"upilens/internal/amqp"
	"upilens/internal/categorize"
	"upilens/internal/core"
	"upilens/internal/docload"
	"upilens/internal/extract"
	"upilens/internal/ports"
)

// IngestService runs the statement pipeline: load, parse, categorize,
// store, then request indexing. Storage is the source of truth; the
// vector index is synced asynchronously through AMQP, and a publish
// failure never fails an ingest.
type IngestService struct {
	store       ports.Store
	categorizer *categorize.Categorizer
	amqpClient  *amqp.Client
}

func NewIngestService(store ports.Store, categorizer *categorize.Categorizer, amqpClient *amqp.Client) *IngestService {
	return &IngestService{
		store:       store,
		categorizer: categorizer,
		amqpClient:  amqpClient,
	}
}

// Ingest processes one uploaded statement file end to end. On a parse
// failure the document row is marked FAILED with the cause and the error
// is returned for the UI.
func (s *IngestService) Ingest(ctx context.Context, filename string, data []byte) (core.Document, []core.Transaction, error) {
	checksum := sha256.Sum256(data)
	doc := core.Document{
		ID:         uuid.NewString(),
		Filename:   filename,
		Checksum:   hex.EncodeToString(checksum[:]),
		Status:     core.StatusPending,
		UploadedAt: time.Now().UTC(),
	}

	if existing, found, err := s.findByChecksum(ctx, doc.Checksum); err != nil {
		return core.Document{}, nil, fmt.Errorf("check for duplicate: %w", err)
	} else if found {
		return core.Document{}, nil, &core.DuplicateDocumentError{
			Filename: existing.Filename,
			Checksum: doc.Checksum,
		}
	}

	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return core.Document{}, nil, fmt.Errorf("record document: %w", err)
	}

	txs, err := s.parse(filename, data)
	if err != nil {
		if markErr := s.store.MarkDocumentFailed(ctx, doc.ID, err); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark document failed",
				"document_id", doc.ID, "error", markErr)
		}
		return doc, nil, err
	}

	txs = s.categorizer.Apply(txs)
	for i := range txs {
		txs[i].ID = uuid.NewString()
		if err := txs[i].Validate(); err != nil {
			err = fmt.Errorf("transaction %d: %w", i+1, err)
			if markErr := s.store.MarkDocumentFailed(ctx, doc.ID, err); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark document failed",
					"document_id", doc.ID, "error", markErr)
			}
			return doc, nil, err
		}
	}

	if err := s.store.InsertTransactions(ctx, doc.ID, txs); err != nil {
		return doc, nil, fmt.Errorf("store transactions: %w", err)
	}
	if err := s.store.MarkDocumentParsed(ctx, doc.ID, len(txs)); err != nil {
		return doc, nil, fmt.Errorf("mark document parsed: %w", err)
	}
	doc.Status = core.StatusParsed
	doc.TxCount = len(txs)

	// Async index sync, the same shape as a write-behind: storage is
	// already consistent, so a publish failure is only logged.
	if s.amqpClient != nil {
		if err := s.amqpClient.PublishIndexDocument(ctx, doc.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish index message",
				"document_id", doc.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Statement ingested",
		"document_id", doc.ID,
		"source_file", filename,
		"tx_count", len(txs))

	return doc, txs, nil
}

// findByChecksum looks for a prior non-failed upload of the same bytes.
// Failed uploads do not count, re-uploading a fixed export must work.
func (s *IngestService) findByChecksum(ctx context.Context, checksum string) (core.Document, bool, error) {
	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return core.Document{}, false, err
	}
	for _, d := range docs {
		if d.Checksum == checksum && d.Status != core.StatusFailed {
			return d, true, nil
		}
	}
	return core.Document{}, false, nil
}

// parse releases no resources: the upload lives entirely in memory and
// is dropped when this returns, success or not.
func (s *IngestService) parse(filename string, data []byte) ([]core.Transaction, error) {
	doc, err := docload.Load(filename, data)
	if err != nil {
		return nil, err
	}

	var txs []core.Transaction
	switch doc.Format {
	case docload.FormatPDF:
		txs, err = extract.ParseStatementText(doc.Text, doc.SourceFile)
	case docload.FormatCSV:
		txs, err = extract.ParseCSVRows(doc.Rows, doc.SourceFile)
	}
	if err != nil {
		return nil, err
	}
	return txs, nil
}
