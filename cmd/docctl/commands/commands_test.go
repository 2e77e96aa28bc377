package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/document-hub/internal/core/domain"
)

type ingestFake struct {
	uploads []domain.Upload
	err     error
}

func (f *ingestFake) Store(_ context.Context, upload domain.Upload) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploads = append(f.uploads, upload)
	return &domain.Document{
		ID:          "doc-" + upload.Filename,
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		Size:        upload.Size,
		Indexed:     true,
	}, nil
}

type removerFake struct {
	ids []string
	err error
}

func (f *removerFake) Delete(_ context.Context, id string) error {
	f.ids = append(f.ids, id)
	return f.err
}

type listerFake struct {
	docs []domain.Document
}

func (f *listerFake) ListDocuments(context.Context) ([]domain.Document, error) {
	return f.docs, nil
}

type queryFake struct {
	result domain.AskResult
	asked  []string
}

func (f *queryFake) GenerateAnswer(context.Context, string) (string, error) {
	return f.result.Answer, nil
}

func (f *queryFake) Ask(_ context.Context, question string) domain.AskResult {
	f.asked = append(f.asked, question)
	result := f.result
	result.Question = question
	return result
}

type watcherFake struct {
	events []domain.DocumentEvent
}

func (f *watcherFake) Watch(_ context.Context, handler func(domain.DocumentEvent)) error {
	for _, event := range f.events {
		handler(event)
	}
	return nil
}

type fakeServices struct {
	ingest   *ingestFake
	remover  *removerFake
	lister   *listerFake
	query    *queryFake
	events   EventWatcher
	released int
}

func newFakeServices() *fakeServices {
	return &fakeServices{
		ingest:  &ingestFake{},
		remover: &removerFake{},
		lister:  &listerFake{},
		query:   &queryFake{},
	}
}

func (f *fakeServices) open(context.Context) (*Services, func(), error) {
	return &Services{
		Ingest:  f.ingest,
		Remover: f.remover,
		Lister:  f.lister,
		Query:   f.query,
		Events:  f.events,
	}, func() { f.released++ }, nil
}

func run(t *testing.T, f *fakeServices, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(f.open)
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUploadCommandStoresFiles(t *testing.T) {
	f := newFakeServices()
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("growth rate: 15%"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	out, err := run(t, f, "upload", path)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(f.ingest.uploads) != 1 {
		t.Fatalf("expected one upload, got %d", len(f.ingest.uploads))
	}
	upload := f.ingest.uploads[0]
	if upload.Filename != "notes.txt" || upload.Size != int64(len("growth rate: 15%")) {
		t.Fatalf("unexpected upload %+v", upload)
	}
	if !strings.HasPrefix(upload.ContentType, "text/plain") {
		t.Fatalf("expected detected text/plain, got %q", upload.ContentType)
	}
	if !strings.Contains(out, "doc-notes.txt") || !strings.Contains(out, "indexed=true") {
		t.Fatalf("unexpected output %q", out)
	}
	if f.released != 1 {
		t.Fatalf("expected services to be released once, got %d", f.released)
	}
}

func TestUploadCommandHonoursContentTypeFlag(t *testing.T) {
	f := newFakeServices()
	path := filepath.Join(t.TempDir(), "page")
	if err := os.WriteFile(path, []byte("<p>hi</p>"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := run(t, f, "upload", "--content-type", "text/html", path); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if f.ingest.uploads[0].ContentType != "text/html" {
		t.Fatalf("expected flag content type, got %q", f.ingest.uploads[0].ContentType)
	}
}

func TestUploadCommandMissingFile(t *testing.T) {
	f := newFakeServices()

	if _, err := run(t, f, "upload", filepath.Join(t.TempDir(), "absent.pdf")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if len(f.ingest.uploads) != 0 {
		t.Fatalf("nothing must be uploaded")
	}
}

func TestListCommandPrintsTable(t *testing.T) {
	f := newFakeServices()
	f.lister.docs = []domain.Document{
		{ID: "b", Filename: "new.pdf", Size: 10, Indexed: true, CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "a", Filename: "old.txt", Size: 5, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	out, err := run(t, f, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", out)
	}
	if !strings.HasPrefix(lines[1], "b") || !strings.HasPrefix(lines[2], "a") {
		t.Fatalf("expected newest first, got %q", out)
	}
}

func TestListCommandJSON(t *testing.T) {
	f := newFakeServices()
	f.lister.docs = []domain.Document{{ID: "a", Filename: "x.txt"}}

	out, err := run(t, f, "list", "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var docs []domain.Document
	if err := json.Unmarshal([]byte(out), &docs); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "a" {
		t.Fatalf("unexpected docs %+v", docs)
	}
}

func TestDeleteCommand(t *testing.T) {
	f := newFakeServices()

	out, err := run(t, f, "delete", "doc-1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.remover.ids) != 1 || f.remover.ids[0] != "doc-1" {
		t.Fatalf("unexpected delete calls %v", f.remover.ids)
	}
	if !strings.Contains(out, "deleted doc-1") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestDeleteCommandNotFound(t *testing.T) {
	f := newFakeServices()
	f.remover.err = domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("no rows"))

	_, err := run(t, f, "delete", "doc-9")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestAskCommandPrintsAnswer(t *testing.T) {
	f := newFakeServices()
	f.query.result = domain.AskResult{Answer: "15%"}

	out, err := run(t, f, "ask", "what", "was", "the", "growth?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if strings.TrimSpace(out) != "15%" {
		t.Fatalf("unexpected output %q", out)
	}
	if len(f.query.asked) != 1 || f.query.asked[0] != "what was the growth?" {
		t.Fatalf("unexpected question %v", f.query.asked)
	}
}

func TestAskCommandReturnsUserMessageOnError(t *testing.T) {
	f := newFakeServices()
	f.query.result = domain.AskResult{Answer: domain.KindTimeout.UserMessage(), IsError: true, Kind: domain.KindTimeout}

	_, err := run(t, f, "ask", "q")
	if err == nil || err.Error() != domain.KindTimeout.UserMessage() {
		t.Fatalf("expected user message error, got %v", err)
	}
}

func TestWatchCommandRequiresEvents(t *testing.T) {
	f := newFakeServices()

	if _, err := run(t, f, "watch"); !errors.Is(err, errEventsDisabled) {
		t.Fatalf("expected errEventsDisabled, got %v", err)
	}
}

func TestWatchCommandPrintsEvents(t *testing.T) {
	f := newFakeServices()
	f.events = &watcherFake{events: []domain.DocumentEvent{
		{Type: domain.EventDocumentStored, DocumentID: "doc-1", Indexed: true},
		{Type: domain.EventDocumentDeleted, DocumentID: "doc-1"},
	}}

	out, err := run(t, f, "watch")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], `"stored"`) || !strings.Contains(lines[1], `"deleted"`) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestConfigFlagSetsConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	f := newFakeServices()

	if _, err := run(t, f, "--config", "/etc/docs.yaml", "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := os.Getenv("CONFIG_FILE"); got != "/etc/docs.yaml" {
		t.Fatalf("expected CONFIG_FILE to be set, got %q", got)
	}
}
