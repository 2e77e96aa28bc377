package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirillkom/document-hub/internal/core/domain"
)

func newUploadCmd(open Opener) *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload and index one or more documents",
		Example: `  docctl upload report.pdf
  docctl upload --content-type text/markdown notes.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, open, func(ctx context.Context, s *Services) error {
				out := cmd.OutOrStdout()
				for _, path := range args {
					doc, err := uploadFile(ctx, s, path, contentType)
					if err != nil {
						return fmt.Errorf("upload %s: %w", path, err)
					}
					fmt.Fprintf(out, "%s\t%s\tindexed=%t\n", doc.ID, doc.Filename, doc.Indexed)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&contentType, "content-type", "", "MIME type to record (detected when empty)")
	return cmd
}

func uploadFile(ctx context.Context, s *Services, path, contentType string) (*domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = detectContentType(path, data)
	}
	return s.Ingest.Store(ctx, domain.Upload{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	})
}

func detectContentType(path string, data []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}

func newListCmd(open Opener) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, open, func(ctx context.Context, s *Services) error {
				docs, err := s.Lister.ListDocuments(ctx)
				if err != nil {
					return fmt.Errorf("list documents: %w", err)
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(docs)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tFILENAME\tSIZE\tINDEXED\tCREATED")
				for _, doc := range docs {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%s\n",
						doc.ID, doc.Filename, doc.Size, doc.Indexed, doc.CreatedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

func newDeleteCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a document with its file and index entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, open, func(ctx context.Context, s *Services) error {
				id := strings.TrimSpace(args[0])
				if err := s.Remover.Delete(ctx, id); err != nil {
					if domain.IsKind(err, domain.ErrDocumentNotFound) {
						return fmt.Errorf("document %s not found", id)
					}
					return fmt.Errorf("delete %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				return nil
			})
		},
	}
}
