package domain

import "time"

// Document is the metadata record of an uploaded file.
// CreatedAt is set once on upload. Indexed only moves from false to true.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`
	Indexed     bool      `json:"indexed"`
	CreatedAt   time.Time `json:"created_at"`
}

// Upload is the raw input of the ingestion flow.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

type DocumentEventType string

const (
	EventDocumentStored  DocumentEventType = "stored"
	EventDocumentDeleted DocumentEventType = "deleted"
)

type DocumentEvent struct {
	Type       DocumentEventType `json:"type"`
	DocumentID string            `json:"document_id"`
	Filename   string            `json:"filename"`
	Indexed    bool              `json:"indexed"`
	OccurredAt time.Time         `json:"occurred_at"`
}
