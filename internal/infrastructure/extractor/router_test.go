package extractor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/kirillkom/document-hub/internal/core/domain"
)

type memStorage struct {
	files map[string][]byte
}

func (m *memStorage) Put(context.Context, string, io.Reader) (string, error) {
	return "", errors.New("not implemented")
}

func (m *memStorage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	raw, ok := m.files[path]
	if !ok {
		return nil, errors.New("missing")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (m *memStorage) Delete(context.Context, string) error { return nil }

func (m *memStorage) Exists(_ context.Context, path string) (bool, error) {
	_, ok := m.files[path]
	return ok, nil
}

type stubParser struct {
	name string
}

func (s stubParser) Parse([]byte) ([]string, error) {
	return []string{s.name}, nil
}

func TestRouterPrefersMediaType(t *testing.T) {
	storage := &memStorage{files: map[string][]byte{"p": []byte("x")}}
	r := NewRouter(storage)
	r.Register(stubParser{name: "by-mime"}, []string{"application/x-custom"}, nil)
	r.Register(stubParser{name: "by-ext"}, nil, []string{".cst"})

	got, err := r.Extract(context.Background(), &domain.Document{
		Filename:    "a.cst",
		ContentType: "application/x-custom; charset=binary",
		StoragePath: "p",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got[0] != "by-mime" {
		t.Fatalf("expected media type routing, got %q", got)
	}
}

func TestRouterFallsBackToExtension(t *testing.T) {
	storage := &memStorage{files: map[string][]byte{"p": []byte("x")}}
	r := NewRouter(storage)
	r.Register(stubParser{name: "by-ext"}, nil, []string{".cst"})

	got, err := r.Extract(context.Background(), &domain.Document{
		Filename:    "A.CST",
		ContentType: "application/octet-stream",
		StoragePath: "p",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got[0] != "by-ext" {
		t.Fatalf("expected extension routing, got %q", got)
	}
}

func TestRouterPlainTextFallback(t *testing.T) {
	storage := &memStorage{files: map[string][]byte{"p": []byte("Growth rate: 15%")}}

	got, err := NewRouter(storage).Extract(context.Background(), &domain.Document{Filename: "notes", StoragePath: "p"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 1 || got[0] != "Growth rate: 15%" {
		t.Fatalf("unexpected segments %q", got)
	}
}

func TestRouterUnsupportedBinary(t *testing.T) {
	storage := &memStorage{files: map[string][]byte{"p": {0xff, 0x00, 0xfe}}}

	_, err := NewRouter(storage).Extract(context.Background(), &domain.Document{Filename: "blob.bin", StoragePath: "p"})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestRouterMissingFile(t *testing.T) {
	_, err := NewRouter(&memStorage{files: map[string][]byte{}}).Extract(context.Background(), &domain.Document{StoragePath: "gone"})
	if err == nil {
		t.Fatalf("expected error")
	}
}
