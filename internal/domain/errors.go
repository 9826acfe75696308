package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCollectionNotFound signals that a collection has not been created (ingestion never ran).
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch at write time.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure after all attempts.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrInvalidChunking signals invalid chunk/overlap sizing.
	ErrInvalidChunking = errors.New("invalid chunking parameters")
	// ErrCorpusInvalid signals an unreadable or malformed corpus file.
	ErrCorpusInvalid = errors.New("invalid corpus file")
	// ErrChunkNotFound signals a lookup of a chunk id that is not in the index.
	ErrChunkNotFound = errors.New("chunk not found")
)

// EmbedError wraps an embedding failure with the identifier of the text that
// failed, so the ingestion pipeline can skip that chunk and continue the batch.
type EmbedError struct {
	ChunkID string
	Err     error
}

func (e *EmbedError) Error() string {
	return fmt.Sprintf("embed chunk %s: %s", e.ChunkID, e.Err.Error())
}

func (e *EmbedError) Unwrap() error { return e.Err }

// BatchError wraps a store write failure with the index of the failing batch.
type BatchError struct {
	Batch int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("upsert batch %d: %s", e.Batch, e.Err.Error())
}

func (e *BatchError) Unwrap() error { return e.Err }
