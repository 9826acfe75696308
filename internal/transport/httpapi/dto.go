package httpapi

import "github.com/stardex-io/stardex/internal/domain"

// Error codes returned to API clients.
const (
	codeBadRequest             = "bad_request"
	codeValidationFailed       = "validation_failed"
	codeCollectionNotFound     = "collection_not_found"
	codeEmbeddingProviderError = "embedding_provider_error"
	codeInternalError          = "internal_error"
)

type retrieveRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type retrieveResponse struct {
	Records []recordSummary `json:"records"`
}

type recordSummary struct {
	RecordID string  `json:"record_id"`
	Title    string  `json:"title"`
	GroupKey string  `json:"group_key"`
	FullText string  `json:"full_text"`
	Score    float64 `json:"score"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func recordsToDTO(records []domain.RecordSummary) []recordSummary {
	out := make([]recordSummary, len(records))
	for i, r := range records {
		out[i] = recordSummary{
			RecordID: r.RecordID,
			Title:    r.Title,
			GroupKey: r.GroupKey,
			FullText: r.FullText,
			Score:    r.Score,
		}
	}
	return out
}
