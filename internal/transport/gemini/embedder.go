package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/stardex-io/stardex/internal/domain"
	"github.com/stardex-io/stardex/internal/metrics"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// taskTypes maps retrieval intents to the Gemini task type values.
var taskTypes = map[domain.Intent]string{
	domain.IntentQuery:    "RETRIEVAL_QUERY",
	domain.IntentDocument: "RETRIEVAL_DOCUMENT",
}

// Embedder is an embedding provider using the Gemini embedContent API.
type Embedder struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	TimeoutSec int
	Logger     *zap.Logger
}

// NewEmbedder creates a Gemini embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Embedder{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		logger:     cfg.Logger,
	}
}

type embedRequest struct {
	Content              content `json:"content"`
	TaskType             string  `json:"taskType,omitempty"`
	OutputDimensionality int     `json:"outputDimensionality,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Embed implements domain.Embedder. If the API rejects the request with the
// intent task type set, it retries once with the task type omitted and reports
// the intent actually used in the result.
func (e *Embedder) Embed(ctx context.Context, text string, intent domain.Intent) (domain.EmbeddingResult, error) {
	vector, err := e.embedContent(ctx, text, taskTypes[intent])
	if err == nil {
		return domain.EmbeddingResult{Vector: vector, UsedIntent: intent}, nil
	}

	if intent == domain.IntentNone {
		return domain.EmbeddingResult{}, err
	}

	if e.logger != nil {
		e.logger.Warn("embedding with task type failed, retrying without it",
			zap.String("intent", string(intent)),
			zap.Error(err))
	}
	metrics.EmbeddingFallbacksTotal.WithLabelValues("gemini", e.model).Inc()

	vector, retryErr := e.embedContent(ctx, text, "")
	if retryErr != nil {
		// Report the original failure, the retry failed for the same reason.
		return domain.EmbeddingResult{}, err
	}

	return domain.EmbeddingResult{Vector: vector, UsedIntent: domain.IntentNone}, nil
}

func (e *Embedder) embedContent(ctx context.Context, text, taskType string) ([]float32, error) {
	reqBody := embedRequest{
		Content:  content{Parts: []part{{Text: text}}},
		TaskType: taskType,
	}
	if e.dimensions > 0 {
		reqBody.OutputDimensionality = e.dimensions
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", e.baseURL, e.model, e.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()

	resp, err := e.httpClient.Do(req)

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues("gemini", e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues("gemini", e.model, "transport_error").Inc()
		return nil, fmt.Errorf("embedding request failed: %w", domain.ErrEmbeddingProviderError)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues("gemini", e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues("gemini", e.model, "read_error").Inc()
		return nil, fmt.Errorf("read embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.EmbeddingRequestsTotal.WithLabelValues("gemini", e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues("gemini", e.model, "api_error").Inc()
		return nil, parseAPIError(resp.StatusCode, body)
	}

	var parsed embedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues("gemini", e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues("gemini", e.model, "decode_error").Inc()
		return nil, fmt.Errorf("decode embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	if len(parsed.Embedding.Values) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues("gemini", e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues("gemini", e.model, "empty_response").Inc()
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues("gemini", e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues("gemini", e.model).Observe(duration.Seconds())

	return parsed.Embedding.Values, nil
}

// HealthCheck verifies API availability via the models listing endpoint.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/models?key=%s&pageSize=1", e.baseURL, e.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("build models request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("list models: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrEmbeddingProviderError for correct 502 mapping.
func parseAPIError(status int, body []byte) error {
	var parsed apiError
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		return fmt.Errorf("embedding API error %d: %s: %w",
			status, parsed.Error.Message, domain.ErrEmbeddingProviderError)
	}
	return fmt.Errorf("embedding API error %d: %s: %w",
		status, string(body), domain.ErrEmbeddingProviderError)
}
