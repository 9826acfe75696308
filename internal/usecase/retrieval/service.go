package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stardex-io/stardex/internal/domain"
)

// Service answers semantic queries against one collection. Reads are
// stateless, so concurrent requests need no coordination.
type Service struct {
	embed           Embedder
	index           Index
	collection      string
	defaultTopK     int
	overFetchFactor int
	logger          *zap.Logger
}

// New creates a retrieval service bound to a collection.
func New(embed Embedder, index Index, collection string, defaultTopK, overFetchFactor int, logger *zap.Logger) *Service {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	if overFetchFactor <= 0 {
		overFetchFactor = 3
	}

	return &Service{
		embed:           embed,
		index:           index,
		collection:      collection,
		defaultTopK:     defaultTopK,
		overFetchFactor: overFetchFactor,
		logger:          logger,
	}
}

// Retrieve returns up to topK distinct records ranked by the similarity of
// their best chunk. The index is over-fetched by a fixed factor because
// neighboring chunks often belong to the same record; after deduplication
// the caller may still receive fewer than topK records, and no second
// fetch is attempted.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) ([]domain.RecordSummary, error) {
	if topK <= 0 {
		topK = s.defaultTopK
	}

	exists, err := s.index.Exists(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("check collection: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("collection %s: %w", s.collection, domain.ErrCollectionNotFound)
	}

	count, err := s.index.Count(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("count collection: %w", err)
	}
	if count == 0 {
		return []domain.RecordSummary{}, nil
	}

	res, err := s.embed.Embed(ctx, query, domain.IntentQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	k := topK * s.overFetchFactor
	if k > count {
		k = count
	}

	entries, err := s.index.Query(ctx, s.collection, res.Vector, k)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	summaries := dedupe(entries, topK)

	s.logger.Debug("retrieval completed",
		zap.String("collection", s.collection),
		zap.Int("top_k", topK),
		zap.Int("fetched", len(entries)),
		zap.Int("returned", len(summaries)))

	return summaries, nil
}

// dedupe walks entries in descending-similarity order and keeps the first
// chunk seen per record. The best chunk's score determines the record's rank.
func dedupe(entries []domain.ScoredEntry, topK int) []domain.RecordSummary {
	seen := make(map[string]struct{}, topK)
	summaries := make([]domain.RecordSummary, 0, topK)

	for _, e := range entries {
		if len(summaries) >= topK {
			break
		}

		recordID := e.Entry.Metadata.RecordID
		if _, ok := seen[recordID]; ok {
			continue
		}
		seen[recordID] = struct{}{}

		summaries = append(summaries, domain.RecordSummary{
			RecordID: recordID,
			Title:    e.Entry.Metadata.Title,
			GroupKey: e.Entry.Metadata.GroupKey,
			FullText: e.Entry.Metadata.FullText,
			Score:    e.Score,
		})
	}

	return summaries
}
