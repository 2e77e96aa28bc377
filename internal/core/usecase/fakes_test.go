package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/kirillkom/document-hub/internal/core/domain"
)

type repoFake struct {
	mu      sync.Mutex
	docs    map[string]domain.Document
	saves   int
	saveErr func(call int, doc *domain.Document) error
	delErr  error
	listErr error
}

func newRepoFake() *repoFake {
	return &repoFake{docs: map[string]domain.Document{}}
}

func (f *repoFake) Save(_ context.Context, doc *domain.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		if err := f.saveErr(f.saves, doc); err != nil {
			return err
		}
	}
	stored := *doc
	if prev, ok := f.docs[doc.ID]; ok {
		stored.Indexed = prev.Indexed || doc.Indexed
		stored.CreatedAt = prev.CreatedAt
	}
	f.docs[doc.ID] = stored
	return nil
}

func (f *repoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %q", id))
	}
	return &doc, nil
}

func (f *repoFake) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	if _, ok := f.docs[id]; !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "delete document", fmt.Errorf("id %q", id))
	}
	delete(f.docs, id)
	return nil
}

func (f *repoFake) ListByCreatedDesc(context.Context) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type storageFake struct {
	files     map[string][]byte
	putErr    error
	deleteErr error
	existsErr error
	deleted   []string
}

func newStorageFake() *storageFake {
	return &storageFake{files: map[string][]byte{}}
}

func (f *storageFake) Put(_ context.Context, key string, data io.Reader) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	path := "/data/" + key
	f.files[path] = raw
	return path, nil
}

func (f *storageFake) Open(_ context.Context, path string) (io.ReadCloser, error) {
	raw, ok := f.files[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *storageFake) Delete(_ context.Context, path string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, path)
	delete(f.files, path)
	return nil
}

func (f *storageFake) Exists(_ context.Context, path string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.files[path]
	return ok, nil
}

// extractorFake reads the stored bytes back as a single text segment.
type extractorFake struct {
	storage *storageFake
	err     error
}

func (f *extractorFake) Extract(ctx context.Context, doc *domain.Document) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	rc, err := f.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return []string{string(raw)}, nil
}

// chunkerFake splits segments into fixed-size pieces.
type chunkerFake struct {
	size int
}

func (f chunkerFake) Split(segments []string) []string {
	var out []string
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		for len(segment) > 0 {
			n := f.size
			if n <= 0 || n > len(segment) {
				n = len(segment)
			}
			out = append(out, segment[:n])
			segment = segment[n:]
		}
	}
	return out
}

type indexFake struct {
	chunks    []domain.Chunk
	addErr    error
	deleteErr error
	deleted   [][]string

	results   []domain.RetrievedChunk
	searchErr error
	lastTopK  int
}

func (f *indexFake) Add(_ context.Context, chunks []domain.Chunk) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *indexFake) SimilaritySearch(_ context.Context, _ string, topK int) ([]domain.RetrievedChunk, error) {
	f.lastTopK = topK
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *indexFake) DeleteByDocumentIDs(_ context.Context, ids []string) error {
	f.deleted = append(f.deleted, ids)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	keep := f.chunks[:0]
	for _, chunk := range f.chunks {
		drop := false
		for _, id := range ids {
			if chunk.DocumentID == id {
				drop = true
			}
		}
		if !drop {
			keep = append(keep, chunk)
		}
	}
	f.chunks = keep
	return nil
}

type eventsFake struct {
	events []domain.DocumentEvent
	err    error
}

func (f *eventsFake) PublishDocumentEvent(_ context.Context, event domain.DocumentEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}
