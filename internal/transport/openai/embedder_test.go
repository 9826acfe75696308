package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/stardex-io/stardex/internal/domain"
	"github.com/stardex-io/stardex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

// embeddingResponse mirrors the OpenAI-compatible API embedding response.
type embeddingResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func writeEmbedding(w http.ResponseWriter, vec []float32, tokens int) {
	resp := embeddingResponse{Object: "list", Model: "test-model"}
	resp.Data = append(resp.Data, struct {
		Object    string    `json:"object"`
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	}{Object: "embedding", Embedding: vec, Index: 0})
	resp.Usage.PromptTokens = tokens
	resp.Usage.TotalTokens = tokens

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func decodeInput(t *testing.T, r *http.Request) string {
	t.Helper()

	var req struct {
		Input []string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if len(req.Input) != 1 {
		t.Fatalf("expected 1 input, got %d", len(req.Input))
	}
	return req.Input[0]
}

func TestEmbedder_Embed(t *testing.T) {
	expectedVec := []float32{0.1, 0.2, 0.3, 0.4}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		input := decodeInput(t, r)
		if !strings.HasSuffix(input, "hello world") {
			t.Errorf("input does not carry the original text: %q", input)
		}
		if !strings.HasPrefix(input, defaultDocumentInstruction) {
			t.Errorf("input does not carry the document instruction: %q", input)
		}

		writeEmbedding(w, expectedVec, 10)
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Model:      "test-model",
		Dimensions: 4,
		Logger:     zap.NewNop(),
	})

	result, err := emb.Embed(context.Background(), "hello world", domain.IntentDocument)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if result.UsedIntent != domain.IntentDocument {
		t.Errorf("UsedIntent = %q, expected %q", result.UsedIntent, domain.IntentDocument)
	}
	if result.Tokens != 10 {
		t.Errorf("Tokens = %d, expected 10", result.Tokens)
	}
	if len(result.Vector) != len(expectedVec) {
		t.Fatalf("expected %d dimensions, got %d", len(expectedVec), len(result.Vector))
	}
	for i, v := range result.Vector {
		if v != expectedVec[i] {
			t.Errorf("vec[%d] = %f, expected %f", i, v, expectedVec[i])
		}
	}
}

func TestEmbedder_QueryInstruction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		input := decodeInput(t, r)
		if !strings.HasPrefix(input, defaultQueryInstruction) {
			t.Errorf("input does not carry the query instruction: %q", input)
		}
		writeEmbedding(w, []float32{0.5, 0.6}, 5)
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	if _, err := emb.Embed(context.Background(), "how do I scale redis", domain.IntentQuery); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
}

func TestEmbedder_CustomInstructions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		input := decodeInput(t, r)
		if !strings.HasPrefix(input, "custom: ") {
			t.Errorf("input does not carry the custom instruction: %q", input)
		}
		writeEmbedding(w, []float32{0.1}, 1)
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{
		APIKey:              "test-key",
		BaseURL:             server.URL,
		Model:               "test-model",
		DocumentInstruction: "custom: ",
		Logger:              zap.NewNop(),
	})

	if _, err := emb.Embed(context.Background(), "text", domain.IntentDocument); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
}

func TestEmbedder_NoInstructionWithoutIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		input := decodeInput(t, r)
		if input != "plain text" {
			t.Errorf("input = %q, expected bare text", input)
		}
		writeEmbedding(w, []float32{0.1}, 1)
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	result, err := emb.Embed(context.Background(), "plain text", domain.IntentNone)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if result.UsedIntent != domain.IntentNone {
		t.Errorf("UsedIntent = %q, expected none", result.UsedIntent)
	}
}

func TestEmbedder_FallbackToBareText(t *testing.T) {
	calls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		input := decodeInput(t, r)
		if strings.HasPrefix(input, defaultDocumentInstruction) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "input too long", "type": "invalid_request_error"},
			})
			return
		}
		writeEmbedding(w, []float32{0.7, 0.8}, 3)
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	result, err := emb.Embed(context.Background(), "hello", domain.IntentDocument)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if calls != 2 {
		t.Errorf("expected 2 API calls, got %d", calls)
	}
	if result.UsedIntent != domain.IntentNone {
		t.Errorf("UsedIntent = %q, expected none after fallback", result.UsedIntent)
	}
}

func TestEmbedder_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := emb.Embed(context.Background(), "hello", domain.IntentNone)
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
}
