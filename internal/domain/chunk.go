package domain

import "fmt"

// Chunk is a bounded-size slice of a record's text, ready for embedding.
// ChunkID is derived from the record id and chunk index, so re-ingesting an
// unchanged record overwrites the same keys instead of duplicating them.
type Chunk struct {
	ChunkID  string
	Text     string
	Index    int
	Total    int
	RecordID string
	Title    string
	GroupKey string
	FullText string
}

// ChunkID derives the deterministic chunk identifier for a record and index.
func ChunkID(recordID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", recordID, index)
}

// IndexEntry is the persisted (id, vector, text, metadata) tuple.
// ChunkID is the primary key: writing the same id twice overwrites.
type IndexEntry struct {
	ChunkID  string
	Vector   []float32
	Text     string
	Metadata Metadata
}

// Metadata carries the chunk's record context so results can be reconstructed
// at query time without a second lookup.
type Metadata struct {
	RecordID    string
	Title       string
	GroupKey    string
	ChunkIndex  int
	TotalChunks int
	FullText    string
}
