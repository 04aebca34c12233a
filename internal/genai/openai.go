package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// groqCompleter produces chat completions via Groq's OpenAI-compatible API.
// It implements the Completer interface.
type groqCompleter struct {
	client openai.Client
	model  string
}

// NewGroqCompleter creates a Groq-backed completer.
// Returns nil if apiKey is empty (provider disabled).
func NewGroqCompleter(apiKey, model string) (Completer, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}

	client := openai.NewClient(
		option.WithBaseURL(GroqBaseURL),
		option.WithAPIKey(apiKey),
	)

	return &groqCompleter{
		client: client,
		model:  model,
	}, nil
}

// Complete generates a response for the request.
func (g *groqCompleter) Complete(ctx context.Context, req Request) (string, error) {
	if g == nil {
		return "", fmt.Errorf("groq completer not configured")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, turn := range req.History {
		if turn.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       g.model,
		Messages:    messages,
		Temperature: openai.Float(float64(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", WrapError(fmt.Errorf("chat completion failed: %w", err), ProviderGroq, 0)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from groq")
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", fmt.Errorf("empty response from groq")
	}
	return result, nil
}

// Provider returns the provider type for this completer.
func (g *groqCompleter) Provider() Provider {
	return ProviderGroq
}

// Close releases resources.
func (g *groqCompleter) Close() error {
	return nil
}
