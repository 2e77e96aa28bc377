package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/document-hub/internal/core/domain"
	"github.com/kirillkom/document-hub/internal/core/ports"
)

type IngestDocumentUseCase struct {
	repo      ports.DocumentRepository
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
	chunker   ports.Chunker
	index     ports.VectorIndex
	events    ports.EventPublisher
	now       func() time.Time
}

// NewIngestDocumentUseCase wires the upload flow. events may be nil.
func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	index ports.VectorIndex,
	events ports.EventPublisher,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:      repo,
		storage:   storage,
		extractor: extractor,
		chunker:   chunker,
		index:     index,
		events:    events,
		now:       time.Now,
	}
}

// Store persists the upload and its metadata, then tries to index it.
// Indexing failures never fail the upload; the record stays with Indexed=false.
func (uc *IngestDocumentUseCase) Store(ctx context.Context, upload domain.Upload) (*domain.Document, error) {
	if len(upload.Data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "store document", errors.New("file is empty"))
	}

	now := uc.now().UTC()
	storageKey := fmt.Sprintf("%d_%s", now.UnixNano(), sanitizeFilename(upload.Filename))
	path, err := uc.storage.Put(ctx, storageKey, bytes.NewReader(upload.Data))
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "save to object storage", err)
	}

	size := upload.Size
	if size <= 0 {
		size = int64(len(upload.Data))
	}
	doc := &domain.Document{
		ID:          uuid.NewString(),
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		Size:        size,
		StoragePath: path,
		CreatedAt:   now,
	}

	if err := uc.repo.Save(ctx, doc); err != nil {
		uc.discardBlob(ctx, path)
		return nil, domain.WrapError(domain.ErrStorage, "create document metadata", err)
	}

	outcome := uc.indexDocument(ctx, doc)
	outcome.log(ctx, doc)

	publishEvent(ctx, uc.events, domain.DocumentEvent{
		Type:       domain.EventDocumentStored,
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Indexed:    doc.Indexed,
		OccurredAt: uc.now().UTC(),
	})

	return doc, nil
}

type indexOutcome struct {
	stage  string
	chunks int
	err    error
}

func (o indexOutcome) log(ctx context.Context, doc *domain.Document) {
	if o.err != nil {
		slog.WarnContext(ctx, "document_index_failed",
			"document_id", doc.ID,
			"filename", doc.Filename,
			"stage", o.stage,
			"error", o.err.Error(),
		)
		return
	}
	slog.InfoContext(ctx, "document_indexed",
		"document_id", doc.ID,
		"filename", doc.Filename,
		"chunks", o.chunks,
	)
}

func (uc *IngestDocumentUseCase) indexDocument(ctx context.Context, doc *domain.Document) indexOutcome {
	segments, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return indexOutcome{stage: "extract", err: err}
	}

	texts := uc.chunker.Split(segments)
	if len(texts) == 0 {
		return indexOutcome{stage: "chunk", err: errors.New("no text content to index")}
	}

	chunks := make([]domain.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, domain.Chunk{
			DocumentID: doc.ID,
			Filename:   doc.Filename,
			Index:      i,
			Text:       text,
		})
	}
	if err := uc.index.Add(ctx, chunks); err != nil {
		return indexOutcome{stage: "index", chunks: len(chunks), err: err}
	}

	marked := *doc
	marked.Indexed = true
	if err := uc.repo.Save(ctx, &marked); err != nil {
		uc.rollbackIndex(ctx, doc.ID)
		return indexOutcome{stage: "mark_indexed", chunks: len(chunks), err: err}
	}
	doc.Indexed = true

	return indexOutcome{stage: "done", chunks: len(chunks)}
}

func (uc *IngestDocumentUseCase) rollbackIndex(ctx context.Context, documentID string) {
	if err := uc.index.DeleteByDocumentIDs(ctx, []string{documentID}); err != nil {
		slog.WarnContext(ctx, "document_index_rollback_failed",
			"document_id", documentID,
			"error", err.Error(),
		)
	}
}

func (uc *IngestDocumentUseCase) discardBlob(ctx context.Context, path string) {
	if err := uc.storage.Delete(ctx, path); err != nil {
		slog.WarnContext(ctx, "orphaned_blob",
			"storage_path", path,
			"error", err.Error(),
		)
	}
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || strings.Trim(base, ".") == "" {
		return "document.bin"
	}
	return base
}
