package ingest

import (
	"context"

	"github.com/stardex-io/stardex/internal/domain"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string, intent domain.Intent) (domain.EmbeddingResult, error)
}

// Index defines the vector index contract for ingestion.
type Index interface {
	Exists(ctx context.Context, collection string) (bool, error)
	Recreate(ctx context.Context, collection string) error
	Upsert(ctx context.Context, collection string, entries []domain.IndexEntry) error
	Count(ctx context.Context, collection string) (int, error)
}

// Splitter chunks narrative text into bounded-size overlapping segments.
type Splitter interface {
	Split(text string) []string
}
