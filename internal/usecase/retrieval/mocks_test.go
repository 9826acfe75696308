package retrieval

import (
	"context"

	"github.com/stardex-io/stardex/internal/domain"
)

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string, intent domain.Intent) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string, intent domain.Intent) (domain.EmbeddingResult, error) {
	return m.embedFn(ctx, text, intent)
}

type mockIndex struct {
	existsFn func(ctx context.Context, collection string) (bool, error)
	countFn  func(ctx context.Context, collection string) (int, error)
	queryFn  func(ctx context.Context, collection string, vector []float32, k int) ([]domain.ScoredEntry, error)
}

func (m *mockIndex) Exists(ctx context.Context, collection string) (bool, error) {
	return m.existsFn(ctx, collection)
}

func (m *mockIndex) Count(ctx context.Context, collection string) (int, error) {
	return m.countFn(ctx, collection)
}

func (m *mockIndex) Query(ctx context.Context, collection string, vector []float32, k int) ([]domain.ScoredEntry, error) {
	return m.queryFn(ctx, collection, vector, k)
}

func newMockIndex(count int) *mockIndex {
	return &mockIndex{
		existsFn: func(context.Context, string) (bool, error) { return true, nil },
		countFn:  func(context.Context, string) (int, error) { return count, nil },
		queryFn: func(context.Context, string, []float32, int) ([]domain.ScoredEntry, error) {
			return nil, nil
		},
	}
}

func queryEmbedder() *mockEmbedder {
	return &mockEmbedder{
		embedFn: func(_ context.Context, _ string, intent domain.Intent) (domain.EmbeddingResult, error) {
			return domain.EmbeddingResult{Vector: []float32{0.1, 0.2}, UsedIntent: intent}, nil
		},
	}
}

func scored(recordID, title string, chunkIndex int, score float64) domain.ScoredEntry {
	return domain.ScoredEntry{
		Entry: domain.IndexEntry{
			ChunkID: domain.ChunkID(recordID, chunkIndex),
			Metadata: domain.Metadata{
				RecordID:   recordID,
				Title:      title,
				GroupKey:   "group-" + recordID,
				ChunkIndex: chunkIndex,
				FullText:   "full text of " + recordID,
			},
		},
		Score: score,
	}
}
