package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/document-hub/internal/core/domain"
	"github.com/kirillkom/document-hub/internal/core/ports"
)

type DeleteDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	index   ports.VectorIndex
	events  ports.EventPublisher
	now     func() time.Time
}

func NewDeleteDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	index ports.VectorIndex,
	events ports.EventPublisher,
) *DeleteDocumentUseCase {
	return &DeleteDocumentUseCase{
		repo:    repo,
		storage: storage,
		index:   index,
		events:  events,
		now:     time.Now,
	}
}

// Delete removes index entries, the stored file and the record, in that order.
// Index cleanup is best effort. A missing file is not an error.
func (uc *DeleteDocumentUseCase) Delete(ctx context.Context, id string) error {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	if doc.Indexed {
		if err := uc.index.DeleteByDocumentIDs(ctx, []string{doc.ID}); err != nil {
			slog.WarnContext(ctx, "document_index_cleanup_failed",
				"document_id", doc.ID,
				"error", err.Error(),
			)
		}
	}

	exists, err := uc.storage.Exists(ctx, doc.StoragePath)
	if err != nil {
		return domain.WrapError(domain.ErrStorage, "check stored file", err)
	}
	if exists {
		if err := uc.storage.Delete(ctx, doc.StoragePath); err != nil {
			return domain.WrapError(domain.ErrStorage, "delete stored file", err)
		}
	}

	if err := uc.repo.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document metadata: %w", err)
	}

	publishEvent(ctx, uc.events, domain.DocumentEvent{
		Type:       domain.EventDocumentDeleted,
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Indexed:    doc.Indexed,
		OccurredAt: uc.now().UTC(),
	})
	return nil
}
