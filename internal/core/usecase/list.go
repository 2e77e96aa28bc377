package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/document-hub/internal/core/domain"
	"github.com/kirillkom/document-hub/internal/core/ports"
)

type ListDocumentsUseCase struct {
	repo ports.DocumentRepository
}

func NewListDocumentsUseCase(repo ports.DocumentRepository) *ListDocumentsUseCase {
	return &ListDocumentsUseCase{repo: repo}
}

// ListDocuments returns all records, newest first.
func (uc *ListDocumentsUseCase) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	docs, err := uc.repo.ListByCreatedDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}
