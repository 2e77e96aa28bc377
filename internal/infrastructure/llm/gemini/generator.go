package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/kirillkom/document-hub/internal/infrastructure/resilience"
)

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

// GenerateFromPrompt sends a single attempt and returns the text verbatim.
func (g *Generator) GenerateFromPrompt(ctx context.Context, prompt string) (string, error) {
	var answer string
	policy := resilience.Policy{Operation: "gemini_generate", MaxAttempts: 1}
	err := g.client.call(ctx, policy, func(ctx context.Context) error {
		resp, err := g.client.models.GenerateContent(ctx, g.client.genModel, genai.Text(prompt), nil)
		if err != nil {
			return err
		}
		if resp == nil || len(resp.Candidates) == 0 {
			return fmt.Errorf("empty response")
		}
		answer = resp.Text()
		return nil
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}
