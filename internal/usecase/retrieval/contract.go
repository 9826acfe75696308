package retrieval

import (
	"context"

	"github.com/stardex-io/stardex/internal/domain"
)

// Embedder vectorizes query text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string, intent domain.Intent) (domain.EmbeddingResult, error)
}

// Index defines the read-only vector index contract for retrieval.
type Index interface {
	Exists(ctx context.Context, collection string) (bool, error)
	Count(ctx context.Context, collection string) (int, error)
	Query(ctx context.Context, collection string, vector []float32, k int) ([]domain.ScoredEntry, error)
}
