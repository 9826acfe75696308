package ingest

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
	existsFn   func(ctx context.Context, collection string) (bool, error)
	recreateFn func(ctx context.Context, collection string) error
	upsertFn   func(ctx context.Context, collection string, entries []domain.IndexEntry) error
	countFn    func(ctx context.Context, collection string) (int, error)
}

func (m *mockIndex) Exists(ctx context.Context, collection string) (bool, error) {
	return m.existsFn(ctx, collection)
}

func (m *mockIndex) Recreate(ctx context.Context, collection string) error {
	return m.recreateFn(ctx, collection)
}

func (m *mockIndex) Upsert(ctx context.Context, collection string, entries []domain.IndexEntry) error {
	return m.upsertFn(ctx, collection, entries)
}

func (m *mockIndex) Count(ctx context.Context, collection string) (int, error) {
	return m.countFn(ctx, collection)
}

// passthroughSplitter returns the input as a single chunk.
type passthroughSplitter struct{}

func (passthroughSplitter) Split(text string) []string { return []string{text} }

func newMockIndex() *mockIndex {
	return &mockIndex{
		existsFn:   func(context.Context, string) (bool, error) { return false, nil },
		recreateFn: func(context.Context, string) error { return nil },
		upsertFn:   func(context.Context, string, []domain.IndexEntry) error { return nil },
		countFn:    func(context.Context, string) (int, error) { return 0, nil },
	}
}

func vectorEmbedder(vec []float32) *mockEmbedder {
	return &mockEmbedder{
		embedFn: func(_ context.Context, _ string, intent domain.Intent) (domain.EmbeddingResult, error) {
			return domain.EmbeddingResult{Vector: vec, UsedIntent: intent}, nil
		},
	}
}
