package localfs

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestPutOpenDelete(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	path, err := s.Put(ctx, "1_a.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if filepath.Base(path) != "1_a.txt" {
		t.Fatalf("unexpected path %s", path)
	}

	rc, err := s.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	raw, _ := io.ReadAll(rc)
	rc.Close()
	if string(raw) != "hello" {
		t.Fatalf("expected hello, got %q", raw)
	}

	exists, err := s.Exists(ctx, path)
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v", exists, err)
	}
	if err := s.Delete(ctx, path); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	exists, err = s.Exists(ctx, path)
	if err != nil || exists {
		t.Fatalf("expected file gone, got %v, %v", exists, err)
	}
	if err := s.Delete(ctx, path); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
}

func TestPutNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	s, _ := New(t.TempDir())

	if _, err := s.Put(ctx, "dup.txt", strings.NewReader("one")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := s.Put(ctx, "dup.txt", strings.NewReader("two")); err == nil {
		t.Fatalf("expected collision error")
	}
}

func TestRejectsPathsOutsideBase(t *testing.T) {
	ctx := context.Background()
	s, _ := New(t.TempDir())

	if _, err := s.Put(ctx, "../escape.txt", strings.NewReader("x")); !errors.Is(err, ErrOutsideBase) {
		t.Fatalf("expected ErrOutsideBase, got %v", err)
	}
	if _, err := s.Exists(ctx, "/etc/passwd"); !errors.Is(err, ErrOutsideBase) {
		t.Fatalf("expected ErrOutsideBase, got %v", err)
	}
}
