package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/document-hub/internal/config"
	"github.com/kirillkom/document-hub/internal/core/ports"
	"github.com/kirillkom/document-hub/internal/core/usecase"
	"github.com/kirillkom/document-hub/internal/infrastructure/chunking"
	"github.com/kirillkom/document-hub/internal/infrastructure/extractor"
	"github.com/kirillkom/document-hub/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/document-hub/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/document-hub/internal/infrastructure/queue/nats"
	"github.com/kirillkom/document-hub/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/document-hub/internal/infrastructure/repository/sqlite"
	"github.com/kirillkom/document-hub/internal/infrastructure/resilience"
	"github.com/kirillkom/document-hub/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/document-hub/internal/infrastructure/vector/chromem"
	"github.com/kirillkom/document-hub/internal/infrastructure/vector/qdrant"
	"github.com/kirillkom/document-hub/internal/observability/metrics"
)

const ServiceName = "document-hub"

type App struct {
	Config  config.Config
	Metrics *metrics.HTTPServerMetrics

	Repo   ports.DocumentRepository
	Events *nats.Publisher

	IngestUC ports.DocumentIngestor
	DeleteUC ports.DocumentRemover
	ListUC   ports.DocumentLister
	QueryUC  ports.DocumentQueryService

	closers []func()
}

type llmBackend struct {
	embedder  ports.Embedder
	generator ports.AnswerGenerator
}

func New(ctx context.Context, cfg config.Config) (app *App, err error) {
	app = &App{
		Config:  cfg,
		Metrics: metrics.NewHTTPServerMetrics(ServiceName),
	}
	defer func() {
		if err != nil {
			app.Close()
			app = nil
		}
	}()

	executor := resilience.NewExecutor(resilienceConfig(cfg, app.Metrics))

	repo, err := app.openRepository(ctx, cfg)
	if err != nil {
		return app, err
	}
	app.Repo = repo

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return app, fmt.Errorf("init object storage: %w", err)
	}

	llm, err := newLLMBackend(ctx, cfg, executor)
	if err != nil {
		return app, err
	}

	index, err := newVectorIndex(cfg, llm.embedder, executor)
	if err != nil {
		return app, err
	}

	var events ports.EventPublisher
	if cfg.NATSURL != "" {
		publisher, err := nats.Connect(cfg.NATSURL, cfg.NATSSubjectPrefix, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return app, fmt.Errorf("init event publisher: %w", err)
		}
		app.closers = append(app.closers, publisher.Close)
		app.Events = publisher
		events = publisher
	}

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	textExtractor := extractor.NewRouter(storage)

	app.IngestUC = usecase.NewIngestDocumentUseCase(repo, storage, textExtractor, chunker, index, events)
	app.DeleteUC = usecase.NewDeleteDocumentUseCase(repo, storage, index, events)
	app.ListUC = usecase.NewListDocumentsUseCase(repo)
	app.QueryUC = usecase.NewQueryUseCase(index, llm.generator, cfg.GenerationTimeout)

	slog.Info("app_initialized",
		"db_driver", cfg.DBDriver,
		"vector_backend", cfg.VectorBackend,
		"llm_provider", cfg.LLMProvider,
		"events_enabled", events != nil,
	)
	return app, nil
}

func (a *App) openRepository(ctx context.Context, cfg config.Config) (ports.DocumentRepository, error) {
	switch cfg.DBDriver {
	case config.DBDriverSQLite:
		repo, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, func() { _ = repo.Close() })
		return repo, nil
	default:
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		repo := postgres.NewDocumentRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return repo, nil
	}
}

func newLLMBackend(ctx context.Context, cfg config.Config, executor *resilience.Executor) (llmBackend, error) {
	switch cfg.LLMProvider {
	case config.LLMProviderGemini:
		client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiGenModel, cfg.GeminiEmbedModel, executor)
		if err != nil {
			return llmBackend{}, fmt.Errorf("init gemini: %w", err)
		}
		return llmBackend{
			embedder:  gemini.NewEmbedder(client),
			generator: gemini.NewGenerator(client),
		}, nil
	default:
		client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
		return llmBackend{
			embedder:  ollama.NewEmbedder(client),
			generator: ollama.NewGenerator(client),
		}, nil
	}
}

func newVectorIndex(cfg config.Config, embedder ports.Embedder, executor *resilience.Executor) (ports.VectorIndex, error) {
	switch cfg.VectorBackend {
	case config.VectorBackendChromem:
		index, err := chromem.New(cfg.ChromemPath, cfg.VectorCollection, embedder)
		if err != nil {
			return nil, fmt.Errorf("init chromem: %w", err)
		}
		return index, nil
	default:
		return qdrant.New(cfg.QdrantURL, cfg.VectorCollection, embedder, executor), nil
	}
}

func resilienceConfig(cfg config.Config, m *metrics.HTTPServerMetrics) resilience.Config {
	out := resilience.DefaultConfig()
	out.RetryMaxAttempts = cfg.RetryMaxAttempts
	out.RetryInitialBackoff = cfg.RetryInitialBackoff
	out.RetryMaxBackoff = cfg.RetryMaxBackoff
	out.BreakerEnabled = cfg.BreakerEnabled
	if cfg.BreakerMinRequests > 0 {
		out.BreakerMinRequests = uint32(cfg.BreakerMinRequests)
	}
	out.BreakerFailureRatio = cfg.BreakerFailureRatio
	out.BreakerOpenTimeout = cfg.BreakerOpenTimeout
	out.OnStateChange = m.RecordBreakerTransition
	return out
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
