package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stardex-io/stardex/internal/domain"
	"github.com/stardex-io/stardex/internal/metrics"
)

// ErrDeclined signals that the caller refused to recreate an existing collection.
var ErrDeclined = errors.New("collection recreate declined")

// Summary reports the outcome of an ingestion run. Skipped chunks are chunks
// whose embedding failed after the fallback attempt; they do not abort the run.
type Summary struct {
	Records            int
	ChunksIndexed      int
	ChunksSkipped      int
	AvgChunksPerRecord float64
}

// Service runs the offline ingestion pipeline: chunk each record's primary
// narrative, embed the chunks with document intent, and write the collection
// in batches. The service owns the collection for the duration of a run.
type Service struct {
	embed    Embedder
	index    Index
	splitter Splitter
	workers  int
	logger   *zap.Logger
}

// New creates an ingestion service.
func New(embed Embedder, index Index, splitter Splitter, logger *zap.Logger) *Service {
	return &Service{
		embed:    embed,
		index:    index,
		splitter: splitter,
		workers:  4,
		logger:   logger,
	}
}

// WithWorkers sets the number of concurrent embedding calls per record.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Run ingests records into the named collection. Recreating an existing
// collection is destructive, so the caller must supply a confirmDestroy
// capability; returning false aborts the run with ErrDeclined.
func (s *Service) Run(
	ctx context.Context, collection string, records []domain.Record, confirmDestroy func() bool,
) (Summary, error) {
	exists, err := s.index.Exists(ctx, collection)
	if err != nil {
		return Summary{}, fmt.Errorf("check collection: %w", err)
	}

	if exists {
		count, err := s.index.Count(ctx, collection)
		if err != nil {
			return Summary{}, fmt.Errorf("count collection: %w", err)
		}
		s.logger.Info("collection already exists",
			zap.String("collection", collection),
			zap.Int("chunks", count))

		if !confirmDestroy() {
			return Summary{}, ErrDeclined
		}
	}

	if err := s.index.Recreate(ctx, collection); err != nil {
		return Summary{}, fmt.Errorf("recreate collection: %w", err)
	}

	var entries []domain.IndexEntry
	skipped := 0

	for _, rec := range records {
		recEntries, recSkipped := s.processRecord(ctx, rec)
		entries = append(entries, recEntries...)
		skipped += recSkipped
	}

	metrics.IngestChunksIndexedTotal.WithLabelValues(collection).Add(float64(len(entries)))
	metrics.IngestChunksSkippedTotal.WithLabelValues(collection).Add(float64(skipped))

	if len(entries) > 0 {
		start := time.Now()
		if err := s.index.Upsert(ctx, collection, entries); err != nil {
			return Summary{}, fmt.Errorf("upsert entries: %w", err)
		}
		metrics.IngestBatchDuration.WithLabelValues(collection).Observe(time.Since(start).Seconds())
	}

	summary := Summary{
		Records:       len(records),
		ChunksIndexed: len(entries),
		ChunksSkipped: skipped,
	}
	if len(records) > 0 {
		summary.AvgChunksPerRecord = float64(len(entries)) / float64(len(records))
	}

	s.logger.Info("ingestion finished",
		zap.String("collection", collection),
		zap.Int("records", summary.Records),
		zap.Int("chunks_indexed", summary.ChunksIndexed),
		zap.Int("chunks_skipped", summary.ChunksSkipped),
		zap.Float64("avg_chunks_per_record", summary.AvgChunksPerRecord))

	return summary, nil
}

// processRecord chunks one record and embeds its chunks. Embedding failures
// are logged and skipped at chunk granularity so one bad chunk does not
// abort the run.
func (s *Service) processRecord(ctx context.Context, rec domain.Record) ([]domain.IndexEntry, int) {
	docs := s.chunkDocuments(rec)

	vectors, errs := s.embedAll(ctx, rec.ID, docs)

	entries := make([]domain.IndexEntry, 0, len(docs))
	skipped := 0

	for i, doc := range docs {
		if errs[i] != nil {
			s.logger.Warn("skipping chunk after embedding failure",
				zap.String("record_id", rec.ID),
				zap.Int("chunk_index", i),
				zap.Error(errs[i]))
			skipped++
			continue
		}

		entries = append(entries, domain.IndexEntry{
			ChunkID: domain.ChunkID(rec.ID, i),
			Vector:  vectors[i],
			Text:    doc,
			Metadata: domain.Metadata{
				RecordID:    rec.ID,
				Title:       rec.Title,
				GroupKey:    rec.GroupKey,
				ChunkIndex:  i,
				TotalChunks: len(docs),
				FullText:    rec.FullText,
			},
		})
	}

	return entries, skipped
}

// chunkDocuments produces the self-describing chunk texts for one record.
// Records without a primary narrative still produce one synthesized chunk so
// every record is represented in the index.
func (s *Service) chunkDocuments(rec domain.Record) []string {
	primary := rec.Primary()
	if strings.TrimSpace(primary) == "" {
		return []string{fallbackDocument(rec)}
	}

	pieces := s.splitter.Split(primary)
	docs := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		docs = append(docs, chunkHeader(rec)+piece)
	}
	return docs
}

// embedAll embeds chunk texts concurrently, bounded by the worker pool.
// Results keep their chunk index so metadata ordering is preserved.
func (s *Service) embedAll(ctx context.Context, recordID string, docs []string) ([][]float32, []error) {
	vectors := make([][]float32, len(docs))
	errs := make([]error, len(docs))

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := s.embed.Embed(ctx, doc, domain.IntentDocument)
			if err != nil {
				errs[i] = &domain.EmbedError{ChunkID: domain.ChunkID(recordID, i), Err: err}
				return
			}
			vectors[i] = res.Vector
		}(i, doc)
	}

	wg.Wait()
	return vectors, errs
}

// chunkHeader prefixes a chunk with record context so it is self-describing
// when retrieved out of order.
func chunkHeader(rec domain.Record) string {
	return fmt.Sprintf("Title: %s\nGroup: %s\n", rec.Title, rec.GroupKey)
}

// fallbackDocument synthesizes a single document from all record fields when
// the primary narrative is empty.
func fallbackDocument(rec domain.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nGroup: %s", rec.Title, rec.GroupKey)
	for _, f := range rec.Fields {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s", f.Name, f.Text)
	}
	return b.String()
}
