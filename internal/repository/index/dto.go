package index

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/stardex-io/stardex/internal/domain"
)

// Hash field names. Double-underscore fields are internal; the rest is chunk
// metadata readable by admin tooling.
const (
	fieldText   = "__text"
	fieldVector = "__vector"
	// fieldVectorAlias is the queryable attribute name. KNN queries reference
	// @vector and the distance is yielded as __vector_score.
	fieldVectorAlias = "vector"

	fieldRecordID    = "record_id"
	fieldTitle       = "title"
	fieldGroupKey    = "group_key"
	fieldChunkIndex  = "chunk_index"
	fieldTotalChunks = "total_chunks"
	fieldFullText    = "full_text"
)

// returnFields is what a KNN query asks the store to hand back. The vector
// itself is never returned; retrieval only needs text and metadata.
var returnFields = []string{
	fieldText, fieldRecordID, fieldTitle, fieldGroupKey,
	fieldChunkIndex, fieldTotalChunks, fieldFullText,
}

// buildHashFields converts an IndexEntry into a flat map[string]string for HSET.
func buildHashFields(e *domain.IndexEntry) map[string]string {
	return map[string]string{
		fieldText:        e.Text,
		fieldVector:      vectorToBytes(e.Vector),
		fieldRecordID:    e.Metadata.RecordID,
		fieldTitle:       e.Metadata.Title,
		fieldGroupKey:    e.Metadata.GroupKey,
		fieldChunkIndex:  strconv.Itoa(e.Metadata.ChunkIndex),
		fieldTotalChunks: strconv.Itoa(e.Metadata.TotalChunks),
		fieldFullText:    e.Metadata.FullText,
	}
}

// parseHashFields converts a flat hash map back into an IndexEntry.
func parseHashFields(chunkID string, m map[string]string) domain.IndexEntry {
	chunkIndex, _ := strconv.Atoi(m[fieldChunkIndex])
	totalChunks, _ := strconv.Atoi(m[fieldTotalChunks])

	return domain.IndexEntry{
		ChunkID: chunkID,
		Text:    m[fieldText],
		Metadata: domain.Metadata{
			RecordID:    m[fieldRecordID],
			Title:       m[fieldTitle],
			GroupKey:    m[fieldGroupKey],
			ChunkIndex:  chunkIndex,
			TotalChunks: totalChunks,
			FullText:    m[fieldFullText],
		},
	}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
