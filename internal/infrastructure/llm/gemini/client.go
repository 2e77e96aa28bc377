package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/kirillkom/document-hub/internal/infrastructure/resilience"
)

// modelsAPI is the subset of *genai.Models used here.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type Client struct {
	models     modelsAPI
	genModel   string
	embedModel string
	executor   *resilience.Executor
}

func New(ctx context.Context, apiKey, genModel, embedModel string, executor *resilience.Executor) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{
		models:     client.Models,
		genModel:   genModel,
		embedModel: embedModel,
		executor:   executor,
	}, nil
}

// StatusError is an API error answered by Gemini.
type StatusError struct {
	Operation string
	Code      int
	Status    string
	Message   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s status: %d %s: %s", e.Operation, e.Code, e.Status, e.Message)
}

func (e *StatusError) HTTPStatusCode() int {
	return e.Code
}

func (c *Client) call(ctx context.Context, policy resilience.Policy, fn func(context.Context) error) error {
	err := c.executor.Run(ctx, policy, func(ctx context.Context) error {
		return asStatusError(policy.Operation, fn(ctx))
	})
	return resilience.MarkTemporary(policy.Operation, err)
}

func asStatusError(operation string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Operation: operation, Code: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &StatusError{Operation: operation, Code: apiErrPtr.Code, Status: apiErrPtr.Status, Message: apiErrPtr.Message}
	}
	return fmt.Errorf("%s: %w", operation, err)
}
