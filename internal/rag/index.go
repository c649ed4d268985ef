package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/philippgille/chromem-go"
)

const collectionName = "transactions"

// ErrIndexEmpty is returned when a query arrives before any document has
// been indexed.
var ErrIndexEmpty = errors.New("rag: index is empty")

// Hit is one retrieved chunk with its similarity score.
type Hit struct {
	ID         string
	Content    string
	Metadata   map[string]string
	Similarity float32
}

// Index wraps a chromem collection. The worker opens it for writing,
// the query path opens a fresh handle per request so it always sees the
// latest persisted state.
type Index struct {
	db   *chromem.DB
	coll *chromem.Collection
}

// OpenIndex opens (or creates) the persistent index under dir.
func OpenIndex(dir string, embed chromem.EmbeddingFunc) (*Index, error) {
	db, err := chromem.NewPersistentDB(dir, true)
	if err != nil {
		return nil, fmt.Errorf("open index at %s: %w", dir, err)
	}
	coll, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}
	return &Index{db: db, coll: coll}, nil
}

// NewMemoryIndex creates a throwaway in-memory index, used in tests and
// by the memory backend.
func NewMemoryIndex(embed chromem.EmbeddingFunc) (*Index, error) {
	db := chromem.NewDB()
	coll, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Index{db: db, coll: coll}, nil
}

// Add embeds and stores the given chunks. Chunks that already exist are
// overwritten, so re-indexing a document is idempotent.
func (i *Index) Add(ctx context.Context, chunks []Chunk, concurrency int) error {
	if len(chunks) == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}
	docs := make([]chromem.Document, 0, len(chunks))
	for _, c := range chunks {
		docs = append(docs, chromem.Document{
			ID:       c.ID,
			Content:  c.Content,
			Metadata: c.Metadata,
		})
	}
	if err := i.coll.AddDocuments(ctx, docs, concurrency); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

// Count returns the number of indexed chunks.
func (i *Index) Count() int {
	return i.coll.Count()
}

// Query runs a semantic search for the question text.
func (i *Index) Query(ctx context.Context, question string, k int) ([]Hit, error) {
	return i.query(ctx, question, k, nil)
}

// QueryContaining runs a semantic search restricted to chunks whose
// content contains term verbatim. Used by the exact-match retrieval
// passes for UPI references and amounts.
func (i *Index) QueryContaining(ctx context.Context, question, term string, k int) ([]Hit, error) {
	return i.query(ctx, question, k, map[string]string{"$contains": term})
}

func (i *Index) query(ctx context.Context, question string, k int, whereDoc map[string]string) ([]Hit, error) {
	n := i.coll.Count()
	if n == 0 {
		return nil, ErrIndexEmpty
	}
	if k > n {
		k = n
	}
	results, err := i.coll.Query(ctx, question, k, nil, whereDoc)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{
			ID:         r.ID,
			Content:    r.Content,
			Metadata:   r.Metadata,
			Similarity: r.Similarity,
		})
	}
	return hits, nil
}
