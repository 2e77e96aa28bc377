// Package commands defines the Cobra commands of the docctl binary.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirillkom/document-hub/internal/bootstrap"
	"github.com/kirillkom/document-hub/internal/config"
	"github.com/kirillkom/document-hub/internal/core/domain"
	"github.com/kirillkom/document-hub/internal/core/ports"
	"github.com/kirillkom/document-hub/internal/observability/logging"
)

// EventWatcher streams document lifecycle events until ctx is done.
type EventWatcher interface {
	Watch(ctx context.Context, handler func(domain.DocumentEvent)) error
}

// Services are the operations the commands drive. Events is nil when
// lifecycle events are disabled.
type Services struct {
	Ingest  ports.DocumentIngestor
	Remover ports.DocumentRemover
	Lister  ports.DocumentLister
	Query   ports.DocumentQueryService
	Events  EventWatcher
}

// Opener builds the services for one command run. The returned func releases them.
type Opener func(ctx context.Context) (*Services, func(), error)

// NewRootCmd builds the CLI backed by the configured stores and models.
func NewRootCmd() *cobra.Command {
	return newRootCmd(openServices)
}

func newRootCmd(open Opener) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "docctl",
		Short: "Manage and query the document hub",
		Long: `docctl uploads documents, lists and deletes them, and answers questions
using the uploaded documents as context.

Configuration comes from the environment, an optional .env file and an
optional YAML file (--config or CONFIG_FILE). Environment variables win.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if configPath != "" {
				if err := os.Setenv("CONFIG_FILE", configPath); err != nil {
					return fmt.Errorf("set CONFIG_FILE: %w", err)
				}
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newUploadCmd(open),
		newListCmd(open),
		newDeleteCmd(open),
		newAskCmd(open),
		newMCPCmd(open),
		newWatchCmd(open),
	)
	return root
}

func openServices(ctx context.Context) (*Services, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	// stdout belongs to command output and the MCP stream.
	slog.SetDefault(logging.New(os.Stderr, "docctl", cfg.LogLevel, cfg.LogFormat))

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap: %w", err)
	}

	services := &Services{
		Ingest:  app.IngestUC,
		Remover: app.DeleteUC,
		Lister:  app.ListUC,
		Query:   app.QueryUC,
	}
	if app.Events != nil {
		services.Events = app.Events
	}
	return services, app.Close, nil
}

// withServices opens the services, runs fn and releases them.
func withServices(cmd *cobra.Command, open Opener, fn func(context.Context, *Services) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	services, release, err := open(ctx)
	if err != nil {
		return err
	}
	if release != nil {
		defer release()
	}
	return fn(ctx, services)
}
