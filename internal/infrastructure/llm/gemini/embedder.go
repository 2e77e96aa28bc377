package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/kirillkom/document-hub/internal/infrastructure/resilience"
)

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	var vectors [][]float32
	policy := resilience.Policy{Operation: "gemini_embed"}
	err := e.client.call(ctx, policy, func(ctx context.Context) error {
		resp, err := e.client.models.EmbedContent(ctx, e.client.embedModel, contents, nil)
		if err != nil {
			return err
		}
		if resp == nil || len(resp.Embeddings) != len(texts) {
			return fmt.Errorf("expected %d embeddings", len(texts))
		}
		vectors = make([][]float32, 0, len(resp.Embeddings))
		for _, embedding := range resp.Embeddings {
			vectors = append(vectors, embedding.Values)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
