package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/philippgille/chromem-go"
	"google.golang.org/genai"

	"upilens/internal/cache"
)

// NewGeminiEmbedder wraps the Gemini embedding model as a chromem
// embedding function. Results are cached by content hash so re-indexing
// an unchanged document does not re-call the API for every chunk.
func NewGeminiEmbedder(client *genai.Client, model string, c *cache.LRUCache[[]float32]) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		key := contentHash(text)
		if c != nil {
			if v, ok := c.Get(key); ok {
				return v, nil
			}
		}

		resp, err := client.Models.EmbedContent(ctx, model, genai.Text(text), nil)
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}
		if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
			return nil, fmt.Errorf("embed content: empty embedding returned")
		}

		vec := resp.Embeddings[0].Values
		if c != nil {
			c.Set(key, vec)
		}
		return vec, nil
	}
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
