package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kirillkom/document-hub/internal/core/domain"
)

func openTestRepo(t *testing.T) *DocumentRepository {
	t.Helper()
	repo, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	created := time.Date(2026, 10, 15, 9, 30, 0, 123456789, time.UTC)

	doc := &domain.Document{ID: "d1", Filename: "a.txt", ContentType: "text/plain", Size: 1200, StoragePath: "/data/a", CreatedAt: created}
	if err := repo.Save(ctx, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "d1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Filename != "a.txt" || got.Size != 1200 || got.Indexed || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected document %+v", got)
	}
}

func TestSaveKeepsCreatedAtAndIndexedFlag(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	created := time.Unix(100, 0).UTC()

	doc := &domain.Document{ID: "d1", Filename: "a.txt", StoragePath: "/a", CreatedAt: created}
	if err := repo.Save(ctx, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	indexed := *doc
	indexed.Indexed = true
	indexed.CreatedAt = time.Unix(999, 0)
	if err := repo.Save(ctx, &indexed); err != nil {
		t.Fatalf("Save(indexed) error = %v", err)
	}
	if err := repo.Save(ctx, doc); err != nil {
		t.Fatalf("Save(stale) error = %v", err)
	}

	got, err := repo.GetByID(ctx, "d1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.Indexed {
		t.Fatalf("indexed flag went back to false")
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at changed to %v", got.CreatedAt)
	}
}

func TestDeleteAndNotFound(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	if err := repo.Save(ctx, &domain.Document{ID: "d1", Filename: "a", StoragePath: "/a", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := repo.Delete(ctx, "d1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, "d1"); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "d1"); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListByCreatedDesc(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	for i, id := range []string{"old", "mid", "new"} {
		doc := &domain.Document{ID: id, Filename: id, StoragePath: "/" + id, CreatedAt: time.Unix(int64(i*10), 0)}
		if err := repo.Save(ctx, doc); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	docs, err := repo.ListByCreatedDesc(ctx)
	if err != nil {
		t.Fatalf("ListByCreatedDesc() error = %v", err)
	}
	if len(docs) != 3 || docs[0].ID != "new" || docs[2].ID != "old" {
		t.Fatalf("unexpected order %+v", docs)
	}
}

func TestOpenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docs.db")
	repo, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer repo.Close()

	docs, err := repo.ListByCreatedDesc(context.Background())
	if err != nil || len(docs) != 0 {
		t.Fatalf("expected empty list, got %v, %v", docs, err)
	}
}
