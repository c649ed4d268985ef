package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/philippgille/chromem-go"

	"upilens/internal/cache"
	"upilens/internal/log"
	"upilens/internal/ports"
)

// ErrEmptyQuestion is returned for blank questions.
var ErrEmptyQuestion = errors.New("rag: question is empty")

// ErrIndexNotReady is returned while no document has been indexed yet.
var ErrIndexNotReady = errors.New("rag: index is not ready, upload a statement first")

// Source is one retrieved chunk returned alongside an answer.
type Source struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Answer is the result of a question: the answer text plus the chunks
// it was grounded on. Direct answers carry no sources.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources,omitempty"`
	Direct  bool     `json:"direct,omitempty"`
}

// Config holds the retrieval knobs of the pipeline.
type Config struct {
	IndexDir string
	TopK     int
	FinalK   int
}

// Pipeline answers questions about the stored transactions. The index
// is reopened per question so answers always reflect what the worker
// last persisted.
type Pipeline struct {
	cfg     Config
	store   ports.TransactionReader
	embed   chromem.EmbeddingFunc
	gen     *Generator
	answers *cache.LRUCache[Answer]
	logger  *log.Logger

	// set in tests to bypass the persistent index
	openIndex func() (*Index, error)
}

func NewPipeline(cfg Config, store ports.TransactionReader, embed chromem.EmbeddingFunc, gen *Generator, answers *cache.LRUCache[Answer], logger *log.Logger) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		store:   store,
		embed:   embed,
		gen:     gen,
		answers: answers,
		logger:  logger.WithComponent(log.ComponentRAG),
	}
	p.openIndex = func() (*Index, error) {
		return OpenIndex(cfg.IndexDir, embed)
	}
	return p
}

// Ask answers a free-text question about the transaction set.
func (p *Pipeline) Ask(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}

	cacheKey := strings.ToLower(question)
	if p.answers != nil {
		if a, ok := p.answers.Get(cacheKey); ok {
			return a, nil
		}
	}

	txs, err := p.store.ListTransactions(ctx)
	if err != nil {
		return Answer{}, fmt.Errorf("list transactions: %w", err)
	}

	if text, ok := directAnswer(question, txs); ok {
		a := Answer{Answer: text, Direct: true}
		p.cacheAnswer(cacheKey, a)
		return a, nil
	}

	idx, err := p.openIndex()
	if err != nil {
		return Answer{}, fmt.Errorf("open index: %w", err)
	}
	if idx.Count() == 0 {
		return Answer{}, ErrIndexNotReady
	}

	hits, err := Retrieve(ctx, idx, question, p.cfg.TopK, p.cfg.FinalK)
	if err != nil {
		if errors.Is(err, ErrIndexEmpty) {
			return Answer{}, ErrIndexNotReady
		}
		return Answer{}, err
	}

	text, err := p.gen.Generate(ctx, question, hits)
	if err != nil {
		return Answer{}, err
	}

	a := Answer{Answer: text, Sources: make([]Source, 0, len(hits))}
	for _, h := range hits {
		a.Sources = append(a.Sources, Source{ID: h.ID, Content: h.Content})
	}

	p.logger.InfoContext(ctx, "question answered",
		log.FieldQuestion, question,
		log.FieldChunkCount, len(hits))
	p.cacheAnswer(cacheKey, a)
	return a, nil
}

func (p *Pipeline) cacheAnswer(key string, a Answer) {
	if p.answers != nil {
		p.answers.Set(key, a)
	}
}
