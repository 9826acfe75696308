// Package index wraps the database store as a vector index over named
// collections of chunks.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/stardex-io/stardex/internal/db"
	"github.com/stardex-io/stardex/internal/domain"
)

// DefaultBatchSize bounds the number of entries in a single pipelined write.
const DefaultBatchSize = 100

// store is the consumer interface for chunk storage (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	DelMulti(ctx context.Context, keys []string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo is the vector index over a store. One Repo serves any number of
// collections; the collection name is part of every key.
type Repo struct {
	store     store
	dim       int
	prefix    string
	batchSize int
}

// New creates a vector index repository. dim is the embedding dimension every
// stored vector must match.
func New(s store, dim int, keyPrefix string) *Repo {
	return &Repo{store: s, dim: dim, prefix: keyPrefix, batchSize: DefaultBatchSize}
}

// WithBatchSize configures the maximum write batch cardinality.
func (r *Repo) WithBatchSize(n int) *Repo {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

// Upsert writes entries in batches of at most batchSize. Writes are keyed by
// chunk id, so re-writing an id overwrites instead of duplicating. A vector
// with the wrong dimension fails the whole call before anything is written.
func (r *Repo) Upsert(ctx context.Context, collection string, entries []domain.IndexEntry) error {
	for i := range entries {
		if len(entries[i].Vector) != r.dim {
			return fmt.Errorf(
				"chunk %s: vector has %d dimensions, collection expects %d: %w",
				entries[i].ChunkID, len(entries[i].Vector), r.dim, domain.ErrVectorDimMismatch,
			)
		}
	}

	for batch := 0; batch*r.batchSize < len(entries); batch++ {
		start := batch * r.batchSize
		end := min(start+r.batchSize, len(entries))

		items := make([]db.HashSetItem, 0, end-start)
		for _, e := range entries[start:end] {
			items = append(items, db.HashSetItem{
				Key:    r.chunkKey(collection, e.ChunkID),
				Fields: buildHashFields(&e),
			})
		}

		if err := r.store.HSetMulti(ctx, items); err != nil {
			return &domain.BatchError{Batch: batch, Err: err}
		}
	}

	return nil
}

// Query returns the k nearest chunks by cosine similarity, best first.
func (r *Repo) Query(ctx context.Context, collection string, vector []float32, k int) ([]domain.ScoredEntry, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName(collection),
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, domain.ErrCollectionNotFound
		}
		return nil, fmt.Errorf("search knn %s: %w", collection, err)
	}

	results := make([]domain.ScoredEntry, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		results = append(results, domain.ScoredEntry{
			Entry: parseHashFields(r.chunkID(collection, entry.Key), entry.Fields),
			Score: entry.Score,
		})
	}
	return results, nil
}

// Get returns a single chunk by id. The stored vector is not unpacked;
// this is a metadata lookup for admin tooling.
func (r *Repo) Get(ctx context.Context, collection, chunkID string) (domain.IndexEntry, error) {
	key := r.chunkKey(collection, chunkID)

	// HGETALL on a missing key yields an empty map, so probe existence
	// first to tell absent apart from empty.
	ok, err := r.store.Exists(ctx, key)
	if err != nil {
		return domain.IndexEntry{}, fmt.Errorf("chunk exists %s: %w", chunkID, err)
	}
	if !ok {
		return domain.IndexEntry{}, fmt.Errorf("chunk %s in %s: %w", chunkID, collection, domain.ErrChunkNotFound)
	}

	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domain.IndexEntry{}, fmt.Errorf("get chunk %s: %w", chunkID, err)
	}
	return parseHashFields(chunkID, fields), nil
}

// Count returns the number of chunks in a collection.
func (r *Repo) Count(ctx context.Context, collection string) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(collection), "*")
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, domain.ErrCollectionNotFound
		}
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// Exists reports whether the collection's index has been created.
func (r *Repo) Exists(ctx context.Context, collection string) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.indexName(collection))
	if err != nil {
		return false, fmt.Errorf("index exists %s: %w", collection, err)
	}
	return ok, nil
}

// Recreate drops the collection's index and data and creates a fresh index.
// Destructive; callers gate it behind an explicit confirmation.
func (r *Repo) Recreate(ctx context.Context, collection string) error {
	if err := r.store.DropIndex(ctx, r.indexName(collection)); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", collection, err)
	}

	keys, err := r.store.Scan(ctx, r.keyPattern(collection))
	if err != nil {
		return fmt.Errorf("scan %s: %w", collection, err)
	}
	if err := r.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("delete chunks %s: %w", collection, err)
	}

	def := &db.IndexDefinition{
		Name:     r.indexName(collection),
		Prefixes: []string{r.keyPrefix(collection)},
		Fields: []db.IndexField{
			{Name: fieldGroupKey, Type: db.IndexFieldTag},
			{
				Name:           fieldVector,
				Alias:          fieldVectorAlias,
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorHNSW,
				VectorDim:      r.dim,
				VectorDistance: db.DistanceCosine,
			},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", collection, err)
	}
	return nil
}

func (r *Repo) keyPrefix(collection string) string {
	return r.prefix + collection + ":"
}

func (r *Repo) keyPattern(collection string) string {
	return r.keyPrefix(collection) + "*"
}

func (r *Repo) chunkKey(collection, chunkID string) string {
	return r.keyPrefix(collection) + chunkID
}

func (r *Repo) chunkID(collection, key string) string {
	prefix := r.keyPrefix(collection)
	if len(key) > len(prefix) && key[:len(prefix)] == prefix {
		return key[len(prefix):]
	}
	return key
}

func (r *Repo) indexName(collection string) string {
	return r.prefix + collection + ":idx"
}
