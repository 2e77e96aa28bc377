package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/document-hub/internal/core/domain"
	"github.com/kirillkom/document-hub/internal/core/ports"
	"github.com/kirillkom/document-hub/internal/infrastructure/extractor/docx"
	"github.com/kirillkom/document-hub/internal/infrastructure/extractor/html"
	"github.com/kirillkom/document-hub/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/document-hub/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/document-hub/internal/infrastructure/extractor/spreadsheet"
)

var ErrUnsupportedFormat = errors.New("unsupported document format")

// Parser turns raw file bytes into text segments.
type Parser interface {
	Parse(data []byte) ([]string, error)
}

// Router picks a parser by MIME type and falls back to the file extension.
type Router struct {
	storage     ports.ObjectStorage
	byMediaType map[string]Parser
	byExtension map[string]Parser
	text        Parser
}

func NewRouter(storage ports.ObjectStorage) *Router {
	r := &Router{
		storage:     storage,
		byMediaType: map[string]Parser{},
		byExtension: map[string]Parser{},
		text:        plaintext.NewParser(),
	}
	r.Register(r.text,
		[]string{"text/plain", "text/markdown", "text/csv", "application/json"},
		[]string{".txt", ".md", ".markdown", ".csv", ".json", ".log"},
	)
	r.Register(pdf.NewParser(), []string{"application/pdf"}, []string{".pdf"})
	r.Register(spreadsheet.NewParser(),
		[]string{
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"application/vnd.ms-excel.sheet.macroEnabled.12",
		},
		[]string{".xlsx", ".xlsm"},
	)
	r.Register(docx.NewParser(),
		[]string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		[]string{".docx"},
	)
	r.Register(html.NewParser(), []string{"text/html", "application/xhtml+xml"}, []string{".html", ".htm"})
	return r
}

func (r *Router) Register(parser Parser, mediaTypes, extensions []string) {
	for _, mt := range mediaTypes {
		r.byMediaType[mt] = parser
	}
	for _, ext := range extensions {
		r.byExtension[ext] = parser
	}
}

func (r *Router) Extract(ctx context.Context, doc *domain.Document) ([]string, error) {
	reader, err := r.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	parser, err := r.parserFor(doc, raw)
	if err != nil {
		return nil, err
	}
	segments, err := parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", doc.Filename, err)
	}
	return segments, nil
}

func (r *Router) parserFor(doc *domain.Document, raw []byte) (Parser, error) {
	if mediaType, _, err := mime.ParseMediaType(doc.ContentType); err == nil {
		if parser, ok := r.byMediaType[strings.ToLower(mediaType)]; ok {
			return parser, nil
		}
	}
	if parser, ok := r.byExtension[strings.ToLower(filepath.Ext(doc.Filename))]; ok {
		return parser, nil
	}
	if utf8.Valid(raw) {
		return r.text, nil
	}
	return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, doc.Filename, doc.ContentType)
}
