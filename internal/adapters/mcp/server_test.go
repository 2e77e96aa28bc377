package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/document-hub/internal/core/domain"
)

type listerFake struct {
	docs []domain.Document
	err  error
}

func (f *listerFake) ListDocuments(context.Context) ([]domain.Document, error) {
	return f.docs, f.err
}

type queryFake struct {
	result    domain.AskResult
	questions []string
}

func (f *queryFake) GenerateAnswer(context.Context, string) (string, error) {
	return f.result.Answer, nil
}

func (f *queryFake) Ask(_ context.Context, question string) domain.AskResult {
	f.questions = append(f.questions, question)
	result := f.result
	result.Question = question
	return result
}

type removerFake struct {
	err error
	ids []string
}

func (f *removerFake) Delete(_ context.Context, id string) error {
	f.ids = append(f.ids, id)
	return f.err
}

func newTestServer(t *testing.T) (*Server, *listerFake, *queryFake, *removerFake) {
	t.Helper()
	lister := &listerFake{}
	query := &queryFake{}
	remover := &removerFake{}
	s, err := NewServer(lister, query, remover)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s, lister, query, remover
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatalf("expected tool result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestNewServerRequiresServices(t *testing.T) {
	if _, err := NewServer(nil, &queryFake{}, &removerFake{}); !errors.Is(err, ErrMissingService) {
		t.Fatalf("expected ErrMissingService, got %v", err)
	}
}

func TestListDocumentsTool(t *testing.T) {
	s, lister, _, _ := newTestServer(t)
	lister.docs = []domain.Document{{ID: "b", Filename: "new.txt"}, {ID: "a", Filename: "old.txt"}}

	result, err := s.handleListDocuments(context.Background(), callRequest(toolListDocuments, nil))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var docs []domain.Document
	if err := json.Unmarshal([]byte(resultText(t, result)), &docs); err != nil {
		t.Fatalf("decode docs: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "b" {
		t.Fatalf("unexpected docs %+v", docs)
	}
}

func TestListDocumentsToolHidesFailureDetail(t *testing.T) {
	s, lister, _, _ := newTestServer(t)
	lister.err = errors.New("dial tcp 10.0.0.5:5432: refused")

	result, err := s.handleListDocuments(context.Background(), callRequest(toolListDocuments, nil))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error")
	}
	if strings.Contains(resultText(t, result), "10.0.0.5") {
		t.Fatalf("technical detail leaked")
	}
}

func TestAskDocumentsTool(t *testing.T) {
	s, _, query, _ := newTestServer(t)
	query.result = domain.AskResult{Answer: "15%"}

	result, err := s.handleAskDocuments(context.Background(), callRequest(toolAskDocuments, map[string]any{"question": " growth? "}))
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error")
	}
	var ask domain.AskResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &ask); err != nil {
		t.Fatalf("decode ask: %v", err)
	}
	if ask.Answer != "15%" || ask.Question != "growth?" {
		t.Fatalf("unexpected ask result %+v", ask)
	}
}

func TestAskDocumentsToolMarksErrorResults(t *testing.T) {
	s, _, query, _ := newTestServer(t)
	query.result = domain.AskResult{Answer: domain.KindTimeout.UserMessage(), IsError: true, Kind: domain.KindTimeout}

	result, err := s.handleAskDocuments(context.Background(), callRequest(toolAskDocuments, map[string]any{"question": "q"}))
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error flag")
	}
}

func TestAskDocumentsToolRequiresQuestion(t *testing.T) {
	s, _, query, _ := newTestServer(t)

	result, err := s.handleAskDocuments(context.Background(), callRequest(toolAskDocuments, map[string]any{}))
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error")
	}
	if len(query.questions) != 0 {
		t.Fatalf("query must not be called")
	}
}

func TestDeleteDocumentTool(t *testing.T) {
	s, _, _, remover := newTestServer(t)

	result, err := s.handleDeleteDocument(context.Background(), callRequest(toolDeleteDoc, map[string]any{"id": "doc-1"}))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	if len(remover.ids) != 1 || remover.ids[0] != "doc-1" {
		t.Fatalf("unexpected delete calls %v", remover.ids)
	}
}

func TestDeleteDocumentToolNotFound(t *testing.T) {
	s, _, _, remover := newTestServer(t)
	remover.err = domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("no rows"))

	result, err := s.handleDeleteDocument(context.Background(), callRequest(toolDeleteDoc, map[string]any{"id": "doc-9"}))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !result.IsError || !strings.Contains(resultText(t, result), "not found") {
		t.Fatalf("expected not found tool error")
	}
}
