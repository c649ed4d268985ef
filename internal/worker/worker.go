// Package worker runs the background indexer. It consumes indexing
// requests published on document ingest, embeds each transaction into
// the persistent vector index and marks the document indexed. A
// periodic sweep picks up documents whose message was lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/philippgille/chromem-go"
	"golang.org/x/sync/errgroup"

	"upilens/internal/amqp"
	"upilens/internal/core"
	"upilens/internal/insights"
	"upilens/internal/log"
	"upilens/internal/ports"
	"upilens/internal/rag"
)

// Config holds indexer settings.
type Config struct {
	IndexDir  string
	BatchSize int
	// SweepInterval is how often the worker looks for parsed but
	// unindexed documents.
	SweepInterval time.Duration
}

// IndexWorker embeds parsed transactions into the vector index.
type IndexWorker struct {
	cfg    Config
	store  ports.Store
	client *amqp.Client
	embed  chromem.EmbeddingFunc
	logger *log.Logger
}

func NewIndexWorker(cfg Config, store ports.Store, client *amqp.Client, embed chromem.EmbeddingFunc, logger *log.Logger) *IndexWorker {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	return &IndexWorker{
		cfg:    cfg,
		store:  store,
		client: client,
		embed:  embed,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Run consumes indexing messages and runs the periodic sweep until the
// context is cancelled.
func (w *IndexWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.client.ConsumeIndexDocuments(ctx, w.handleMessage)
	})

	g.Go(func() error {
		ticker := time.NewTicker(w.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.Sweep(ctx); err != nil {
					w.logger.ErrorContext(ctx, "sweep failed", log.FieldError, err)
				}
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *IndexWorker) handleMessage(ctx context.Context, msg *amqp.IndexDocumentMessage) error {
	return w.IndexDocument(ctx, msg.DocumentID)
}

// IndexDocument embeds every transaction of the document, refreshes the
// monthly summary chunks and marks the document indexed.
func (w *IndexWorker) IndexDocument(ctx context.Context, documentID string) error {
	started := time.Now()

	doc, err := w.store.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document %s: %w", documentID, err)
	}
	if doc.Status == core.StatusIndexed {
		w.logger.InfoContext(ctx, "document already indexed", log.FieldDocumentID, documentID)
		return nil
	}
	if doc.Status != core.StatusParsed {
		w.logger.WarnContext(ctx, "skipping document in non-indexable state",
			log.FieldDocumentID, documentID, "status", string(doc.Status))
		return nil
	}

	txs, err := w.store.TransactionsByDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load transactions for %s: %w", documentID, err)
	}

	chunks := make([]rag.Chunk, 0, len(txs))
	for _, tx := range txs {
		chunks = append(chunks, rag.TransactionChunk(tx))
	}

	// summary chunks cover the whole dataset, so rebuild them from all
	// stored transactions rather than just this document's
	all, err := w.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	for _, s := range insights.Monthly(all) {
		chunks = append(chunks, rag.SummaryChunk(s))
	}

	idx, err := rag.OpenIndex(w.cfg.IndexDir, w.embed)
	if err != nil {
		return err
	}
	for start := 0; start < len(chunks); start += w.cfg.BatchSize {
		end := min(start+w.cfg.BatchSize, len(chunks))
		if err := idx.Add(ctx, chunks[start:end], 4); err != nil {
			return fmt.Errorf("index document %s: %w", documentID, err)
		}
	}

	if err := w.store.MarkDocumentIndexed(ctx, documentID); err != nil {
		return fmt.Errorf("mark indexed %s: %w", documentID, err)
	}

	w.logger.InfoContext(ctx, "document indexed",
		log.FieldDocumentID, documentID,
		log.FieldChunkCount, len(chunks),
		log.FieldDuration, time.Since(started).Milliseconds())
	return nil
}

// Sweep indexes any parsed document that never got its message through.
func (w *IndexWorker) Sweep(ctx context.Context) error {
	docs, err := w.store.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	for _, doc := range docs {
		if doc.Status != core.StatusParsed {
			continue
		}
		w.logger.InfoContext(ctx, "sweep found unindexed document", log.FieldDocumentID, doc.ID)
		if err := w.IndexDocument(ctx, doc.ID); err != nil {
			w.logger.ErrorContext(ctx, "sweep index failed",
				log.FieldDocumentID, doc.ID, log.FieldError, err)
		}
	}
	return nil
}
