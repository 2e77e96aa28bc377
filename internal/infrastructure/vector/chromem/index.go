package chromem

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"github.com/kirillkom/document-hub/internal/core/domain"
	"github.com/kirillkom/document-hub/internal/core/ports"
)

// Index is an embedded VectorIndex. An empty path keeps everything in memory.
type Index struct {
	collection *chromem.Collection
	embedder   ports.Embedder
}

func New(path, collection string, embedder ports.Embedder) (*Index, error) {
	var db *chromem.DB
	if path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	}

	c, err := db.GetOrCreateCollection(collection, nil, embedder.EmbedQuery)
	if err != nil {
		return nil, fmt.Errorf("get or create collection: %w", err)
	}
	return &Index{collection: c, embedder: embedder}, nil
}

func (i *Index) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Text)
	}
	vectors, err := i.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("chunks/vectors mismatch")
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for n, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:      uuid.NewString(),
			Content: chunk.Text,
			Metadata: map[string]string{
				"document_id": chunk.DocumentID,
				"filename":    chunk.Filename,
				"chunk_index": strconv.Itoa(chunk.Index),
			},
			Embedding: vectors[n],
		})
	}
	if err := i.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

func (i *Index) SimilaritySearch(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	// chromem rejects nResults above the collection size.
	topK = min(topK, i.collection.Count())
	if topK <= 0 {
		return nil, nil
	}

	vector, err := i.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := i.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	out := make([]domain.RetrievedChunk, 0, len(results))
	for n, r := range results {
		out = append(out, domain.RetrievedChunk{
			DocumentID: r.Metadata["document_id"],
			Filename:   r.Metadata["filename"],
			Text:       r.Content,
			Rank:       n + 1,
			Score:      float64(r.Similarity),
		})
	}
	return out, nil
}

func (i *Index) DeleteByDocumentIDs(ctx context.Context, documentIDs []string) error {
	for _, id := range documentIDs {
		if id == "" {
			continue
		}
		if err := i.collection.Delete(ctx, map[string]string{"document_id": id}, nil); err != nil {
			return fmt.Errorf("delete chunks of %s: %w", id, err)
		}
	}
	return nil
}
