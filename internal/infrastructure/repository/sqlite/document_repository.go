package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver

	"github.com/kirillkom/document-hub/internal/core/domain"
)

// DocumentRepository keeps document records in an embedded SQLite file.
// created_at is stored as unix nanoseconds.
type DocumentRepository struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
// Use ":memory:" in tests.
func Open(ctx context.Context, path string) (*DocumentRepository, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open %s: %w", path, err)
	}
	// A single connection avoids SQLITE_BUSY and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	repo := &DocumentRepository{db: db}
	if err := repo.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *DocumentRepository) Close() error {
	return r.db.Close()
}

func (r *DocumentRepository) migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
	id           TEXT    PRIMARY KEY,
	filename     TEXT    NOT NULL,
	content_type TEXT    NOT NULL DEFAULT '',
	size_bytes   INTEGER NOT NULL,
	storage_path TEXT    NOT NULL,
	indexed      INTEGER NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at DESC);
`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite migrate: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	const q = `
INSERT INTO documents (id, filename, content_type, size_bytes, storage_path, indexed, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	filename = excluded.filename,
	content_type = excluded.content_type,
	size_bytes = excluded.size_bytes,
	storage_path = excluded.storage_path,
	indexed = documents.indexed OR excluded.indexed
`
	_, err := r.db.ExecContext(ctx, q,
		doc.ID, doc.Filename, doc.ContentType, doc.Size, doc.StoragePath, doc.Indexed, doc.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, content_type, size_bytes, storage_path, indexed, created_at
FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
	}
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "delete document", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *DocumentRepository) ListByCreatedDesc(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, filename, content_type, size_bytes, storage_path, indexed, created_at
FROM documents ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func scanDocument(row interface{ Scan(...any) error }) (*domain.Document, error) {
	var (
		doc       domain.Document
		indexed   int64
		createdAt int64
	)
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.ContentType, &doc.Size, &doc.StoragePath, &indexed, &createdAt); err != nil {
		return nil, err
	}
	doc.Indexed = indexed != 0
	doc.CreatedAt = time.Unix(0, createdAt).UTC()
	return &doc, nil
}
