package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	mcpadapter "github.com/kirillkom/document-hub/internal/adapters/mcp"
	"github.com/kirillkom/document-hub/internal/core/domain"
)

var errEventsDisabled = errors.New("lifecycle events are disabled: set NATS_URL")

func newAskCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Answer a question from the uploaded documents",
		Example: `  docctl ask "What was the growth rate last quarter?"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return fmt.Errorf("question is required")
			}
			return withServices(cmd, open, func(ctx context.Context, s *Services) error {
				result := s.Query.Ask(ctx, question)
				if result.IsError {
					return errors.New(result.Answer)
				}
				fmt.Fprintln(cmd.OutOrStdout(), result.Answer)
				return nil
			})
		},
	}
}

func newMCPCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve list, ask and delete as MCP tools over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the
list_documents, ask_documents and delete_document tools.

Example client configuration:
  {
    "mcpServers": {
      "documents": {"command": "/path/to/docctl", "args": ["mcp"]}
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, open, func(ctx context.Context, s *Services) error {
				server, err := mcpadapter.NewServer(s.Lister, s.Query, s.Remover)
				if err != nil {
					return err
				}
				return server.Serve(ctx, os.Stdin, cmd.OutOrStdout())
			})
		},
	}
}

func newWatchCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print document lifecycle events as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, open, func(ctx context.Context, s *Services) error {
				if s.Events == nil {
					return errEventsDisabled
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				return s.Events.Watch(ctx, func(event domain.DocumentEvent) {
					_ = enc.Encode(event)
				})
			})
		},
	}
}
