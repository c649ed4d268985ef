package rag

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const answerPrompt = `You are a personal finance assistant. Answer the question using only the transaction records below. Amounts are in Indian rupees. If the records do not contain the answer, say so plainly instead of guessing.

Transaction records:
%s

Question: %s

Answer:`

// Generator produces grounded answers with a Gemini model.
type Generator struct {
	client *genai.Client
	model  string
}

func NewGenerator(client *genai.Client, model string) *Generator {
	return &Generator{client: client, model: model}
}

// Generate asks the model to answer the question given the retrieved
// context chunks.
func (g *Generator) Generate(ctx context.Context, question string, hits []Hit) (string, error) {
	var sb strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&sb, "[%d]\n%s\n\n", i+1, h.Content)
	}

	prompt := fmt.Sprintf(answerPrompt, strings.TrimRight(sb.String(), "\n"), question)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("generate answer: model returned no text")
	}
	return text, nil
}
