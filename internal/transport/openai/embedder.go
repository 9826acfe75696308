package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/stardex-io/stardex/internal/domain"
	"github.com/stardex-io/stardex/internal/metrics"
)

// Default instruction prefixes for asymmetric retrieval. OpenAI-compatible
// APIs have no task type parameter, so the intent is encoded as a prefix
// in the text itself.
const (
	defaultQueryInstruction    = "Represent this query for retrieving relevant documents: "
	defaultDocumentInstruction = "Represent this document for semantic search: "
)

// Embedder is an embedding provider using the OpenAI-compatible API.
type Embedder struct {
	client              *openai.Client
	model               openai.EmbeddingModel
	dimensions          int
	queryInstruction    string
	documentInstruction string
	logger              *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int

	// QueryInstruction and DocumentInstruction override the default intent
	// prefixes. Leave empty to use the defaults.
	QueryInstruction    string
	DocumentInstruction string

	Logger *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	queryInstruction := cfg.QueryInstruction
	if queryInstruction == "" {
		queryInstruction = defaultQueryInstruction
	}
	documentInstruction := cfg.DocumentInstruction
	if documentInstruction == "" {
		documentInstruction = defaultDocumentInstruction
	}

	return &Embedder{
		client:              openai.NewClientWithConfig(clientCfg),
		model:               openai.EmbeddingModel(cfg.Model),
		dimensions:          cfg.Dimensions,
		queryInstruction:    queryInstruction,
		documentInstruction: documentInstruction,
		logger:              cfg.Logger,
	}
}

// Embed implements domain.Embedder. The intent is applied as an instruction
// prefix. If the prefixed request fails, it retries once with the bare text.
func (e *Embedder) Embed(ctx context.Context, text string, intent domain.Intent) (domain.EmbeddingResult, error) {
	result, err := e.createEmbedding(ctx, e.applyInstruction(text, intent))
	if err == nil {
		result.UsedIntent = intent
		return result, nil
	}

	if intent == domain.IntentNone {
		return domain.EmbeddingResult{}, err
	}

	if e.logger != nil {
		e.logger.Warn("embedding with instruction prefix failed, retrying with bare text",
			zap.String("intent", string(intent)),
			zap.Error(err))
	}
	metrics.EmbeddingFallbacksTotal.WithLabelValues("openai", string(e.model)).Inc()

	result, retryErr := e.createEmbedding(ctx, text)
	if retryErr != nil {
		return domain.EmbeddingResult{}, err
	}

	result.UsedIntent = domain.IntentNone
	return result, nil
}

func (e *Embedder) applyInstruction(text string, intent domain.Intent) string {
	switch intent {
	case domain.IntentQuery:
		return e.queryInstruction + text
	case domain.IntentDocument:
		return e.documentInstruction + text
	default:
		return text
	}
}

func (e *Embedder) createEmbedding(ctx context.Context, input string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{input},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()

	resp, err := e.client.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues("openai", string(e.model), "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues("openai", string(e.model), "api_error").Inc()
		return domain.EmbeddingResult{}, parseAPIError(err)
	}

	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues("openai", string(e.model), "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues("openai", string(e.model), "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues("openai", string(e.model), "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues("openai", string(e.model)).Observe(duration.Seconds())

	return domain.EmbeddingResult{
		Vector: resp.Data[0].Embedding,
		Tokens: resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrEmbeddingProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrEmbeddingProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("embedding API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("embedding request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
