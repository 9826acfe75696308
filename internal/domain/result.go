package domain

// ScoredEntry is one k-NN hit: an index entry with its similarity score
// (cosine distance converted to similarity, higher is closer).
type ScoredEntry struct {
	Entry IndexEntry
	Score float64
}

// RecordSummary is one distinct source record in a retrieval result, ranked
// by its best-scoring chunk.
type RecordSummary struct {
	RecordID string
	Title    string
	GroupKey string
	FullText string
	Score    float64
}
