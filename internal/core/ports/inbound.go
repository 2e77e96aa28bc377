package ports

import (
	"context"

	"github.com/kirillkom/document-hub/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Store(ctx context.Context, upload domain.Upload) (*domain.Document, error)
}

// DocumentRemover is the inbound contract for document deletion orchestration.
type DocumentRemover interface {
	Delete(ctx context.Context, id string) error
}

// DocumentLister is the inbound read model for document metadata.
type DocumentLister interface {
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}

// DocumentQueryService is the inbound contract for question answering.
type DocumentQueryService interface {
	GenerateAnswer(ctx context.Context, question string) (string, error)
	Ask(ctx context.Context, question string) domain.AskResult
}
