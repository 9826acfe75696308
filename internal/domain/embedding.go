package domain

import "context"

// Intent tags how an embedding will be used. Asymmetric models encode queries
// and documents differently; IntentNone requests the model-default mode.
type Intent string

const (
	// IntentQuery marks text the user is searching with.
	IntentQuery Intent = "query"
	// IntentDocument marks text being indexed.
	IntentDocument Intent = "document"
	// IntentNone omits the intent (model-default, used by the fallback attempt).
	IntentNone Intent = ""
)

// Embedder is the shared text vectorization contract between layers.
//
// Implementations make the primary request with the given intent and, if it
// fails, retry exactly once with the intent omitted before giving up. The
// returned UsedIntent reports which attempt produced the vector.
type Embedder interface {
	Embed(ctx context.Context, text string, intent Intent) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and request accounting.
type EmbeddingResult struct {
	Vector     []float32
	UsedIntent Intent // differs from the requested intent when the fallback fired
	Tokens     int
}
