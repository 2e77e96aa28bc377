package ports

import (
	"context"
	"io"

	"github.com/kirillkom/document-hub/internal/core/domain"
)

// DocumentRepository persists and reads document records.
type DocumentRepository interface {
	Save(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
	ListByCreatedDesc(ctx context.Context) ([]domain.Document, error)
}

// ObjectStorage stores source documents. Put returns the path later operations use.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data io.Reader) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// TextExtractor turns a stored document into raw text segments (pages, sheets, ...).
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) ([]string, error)
}

// Chunker splits raw segments into index-sized chunks.
type Chunker interface {
	Split(segments []string) []string
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex stores chunks and answers similarity queries in descending score order.
type VectorIndex interface {
	Add(ctx context.Context, chunks []domain.Chunk) error
	SimilaritySearch(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)
	DeleteByDocumentIDs(ctx context.Context, documentIDs []string) error
}

// AnswerGenerator completes a prompt with the generative model.
type AnswerGenerator interface {
	GenerateFromPrompt(ctx context.Context, prompt string) (string, error)
}

// EventPublisher emits document lifecycle events.
type EventPublisher interface {
	PublishDocumentEvent(ctx context.Context, event domain.DocumentEvent) error
}
