// Package genai provides the LLM collaborators: chat completions with
// cross-provider failover (Gemini primary, Groq fallback) and embedding
// generation for the document index.
package genai

import "context"

// Provider identifies an LLM backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderGroq   Provider = "groq"
)

// GroqBaseURL is the OpenAI-compatible endpoint for Groq.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// Turn is one prior conversation message passed as context.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Request describes a chat completion.
type Request struct {
	System      string
	History     []Turn
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Completer produces chat completions.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Provider() Provider
	Close() error
}
