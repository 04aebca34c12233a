package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/manmad-web/sfubot/internal/ratelimit"
)

const (
	// geminiAPIBaseURL is the base URL for the Gemini REST API.
	geminiAPIBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

	// embeddingRateLimit is the requests per minute cap for the embedding API.
	embeddingRateLimit = 1000

	// Retry configuration for transient embedding errors.
	embedMaxRetries   = 5
	embedInitialDelay = 2 * time.Second
)

// EmbeddingClient generates embedding vectors using the Gemini API.
type EmbeddingClient struct {
	apiKey      string
	model       string
	baseURL     string
	httpClient  *http.Client
	rateLimiter *ratelimit.Limiter
}

// NewEmbeddingClient creates a Gemini embedding client for the given model.
func NewEmbeddingClient(apiKey, model string) *EmbeddingClient {
	return &EmbeddingClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiAPIBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: ratelimit.New(embeddingRateLimit, embeddingRateLimit/60.0),
	}
}

type embeddingRequest struct {
	Model   string           `json:"model"`
	Content embeddingContent `json:"content"`
}

type embeddingContent struct {
	Parts []embeddingPart `json:"parts"`
}

type embeddingPart struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Embed generates an embedding vector for the given text.
// Transient errors (429, 5xx, network) are retried with exponential backoff.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty or whitespace-only text cannot be embedded")
	}

	var lastErr error

	for attempt := 0; attempt <= embedMaxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		result, retryable, err := c.embedOnce(ctx, text)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !retryable {
			return nil, err
		}
		if attempt == embedMaxRetries {
			break
		}

		backoff := CalculateBackoff(attempt+1, embedInitialDelay, time.Minute)
		if err := Sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// embedOnce performs a single embedding request.
// Returns (result, retryable, error).
func (c *EmbeddingClient) embedOnce(ctx context.Context, text string) ([]float32, bool, error) {
	url := fmt.Sprintf("%s/%s:embedContent?key=%s", c.baseURL, c.model, c.apiKey)

	reqBody := embeddingRequest{
		Model: fmt.Sprintf("models/%s", c.model),
		Content: embeddingContent{
			Parts: []embeddingPart{{Text: text}},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network errors are retryable.
		return nil, true, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("HTTP %d: server error or rate limited", resp.StatusCode)
	}

	var embeddingResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingResp); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}

	if embeddingResp.Error != nil {
		retryable := embeddingResp.Error.Code == http.StatusTooManyRequests ||
			embeddingResp.Error.Status == "RESOURCE_EXHAUSTED" ||
			embeddingResp.Error.Code >= 500

		return nil, retryable, fmt.Errorf("API error %d: %s - %s",
			embeddingResp.Error.Code,
			embeddingResp.Error.Status,
			embeddingResp.Error.Message)
	}

	if len(embeddingResp.Embedding.Values) == 0 {
		return nil, false, fmt.Errorf("empty embedding returned")
	}

	return embeddingResp.Embedding.Values, false, nil
}

// IsConfigured reports whether the API key is set.
func (c *EmbeddingClient) IsConfigured() bool {
	return c.apiKey != ""
}

// NewEmbeddingFunc creates a chromem-go compatible EmbeddingFunc backed by
// the Gemini embedding API.
func NewEmbeddingFunc(apiKey, model string) chromem.EmbeddingFunc {
	client := NewEmbeddingClient(apiKey, model)
	return func(ctx context.Context, text string) ([]float32, error) {
		return client.Embed(ctx, text)
	}
}
