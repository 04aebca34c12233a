package genai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmbeddingClient(serverURL string) *EmbeddingClient {
	c := NewEmbeddingClient("test-key", "gemini-embedding-001")
	c.baseURL = serverURL
	return c
}

func TestEmbedSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-embedding-001:embedContent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"embedding":{"values":[0.1,0.2,0.3]}}`))
	}))
	defer server.Close()

	client := newTestEmbeddingClient(server.URL)

	got, err := client.Embed(context.Background(), "hello world")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got)
}

func TestEmbedRejectsEmptyText(t *testing.T) {
	client := newTestEmbeddingClient("http://unused")

	_, err := client.Embed(context.Background(), "   ")

	require.Error(t, err)
}

func TestEmbedRequiresAPIKey(t *testing.T) {
	client := NewEmbeddingClient("", "gemini-embedding-001")

	_, err := client.Embed(context.Background(), "hello")

	require.Error(t, err)
	assert.False(t, client.IsConfigured())
}

func TestEmbedDoesNotRetryAPIError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	client := newTestEmbeddingClient(server.URL)

	_, err := client.Embed(context.Background(), "hello")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestEmbedEmptyVectorIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"embedding":{"values":[]}}`))
	}))
	defer server.Close()

	client := newTestEmbeddingClient(server.URL)

	_, err := client.Embed(context.Background(), "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty embedding")
}

func TestNewEmbeddingFunc(t *testing.T) {
	fn := NewEmbeddingFunc("", "gemini-embedding-001")

	_, err := fn(context.Background(), "hello")

	require.Error(t, err)
}
