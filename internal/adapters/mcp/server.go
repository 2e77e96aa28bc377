// Package mcpadapter exposes the document hub as Model Context Protocol tools.
package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/document-hub/internal/core/domain"
	"github.com/kirillkom/document-hub/internal/core/ports"
)

const (
	serverName    = "document-hub"
	serverVersion = "0.1.0"

	toolListDocuments = "list_documents"
	toolAskDocuments  = "ask_documents"
	toolDeleteDoc     = "delete_document"
)

var ErrMissingService = errors.New("mcp: lister, query and remover services are required")

type Server struct {
	lister  ports.DocumentLister
	query   ports.DocumentQueryService
	remover ports.DocumentRemover
	mcp     *server.MCPServer
}

func NewServer(
	lister ports.DocumentLister,
	query ports.DocumentQueryService,
	remover ports.DocumentRemover,
) (*Server, error) {
	if lister == nil || query == nil || remover == nil {
		return nil, ErrMissingService
	}

	s := &Server{
		lister:  lister,
		query:   query,
		remover: remover,
		mcp:     server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false)),
	}
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool(toolListDocuments,
		mcp.WithDescription("List uploaded documents, newest first"),
	), s.handleListDocuments)

	s.mcp.AddTool(mcp.NewTool(toolAskDocuments,
		mcp.WithDescription("Answer a question using the uploaded documents as context"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("the question to answer"),
		),
	), s.handleAskDocuments)

	s.mcp.AddTool(mcp.NewTool(toolDeleteDoc,
		mcp.WithDescription("Delete a document together with its file and index entries"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("the document id"),
		),
	), s.handleDeleteDocument)
}

// Serve speaks JSON-RPC over the given streams until ctx is cancelled or in closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) handleListDocuments(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.lister.ListDocuments(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "mcp_tool_failed", "tool", toolListDocuments, "error", err.Error())
		return mcp.NewToolResultError("failed to list documents"), nil
	}
	return jsonResult(docs)
}

func (s *Server) handleAskDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("question is required"), nil
	}

	result := s.query.Ask(ctx, strings.TrimSpace(question))
	toolResult, err := jsonResult(result)
	if err != nil {
		return nil, err
	}
	toolResult.IsError = result.IsError
	return toolResult, nil
}

func (s *Server) handleDeleteDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil || strings.TrimSpace(id) == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	id = strings.TrimSpace(id)

	if err := s.remover.Delete(ctx, id); err != nil {
		if domain.IsKind(err, domain.ErrDocumentNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("document %s not found", id)), nil
		}
		slog.ErrorContext(ctx, "mcp_tool_failed",
			"tool", toolDeleteDoc,
			"document_id", id,
			"error", err.Error(),
		)
		return mcp.NewToolResultError("failed to delete document"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("document %s deleted", id)), nil
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
