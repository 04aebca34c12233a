package genai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// geminiCompleter produces chat completions via the Gemini API.
// It implements the Completer interface.
type geminiCompleter struct {
	client *genai.Client
	model  string
}

// NewGeminiCompleter creates a Gemini-backed completer.
// Returns nil if apiKey is empty (provider disabled).
func NewGeminiCompleter(ctx context.Context, apiKey, model string) (Completer, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiCompleter{
		client: client,
		model:  model,
	}, nil
}

// Complete generates a response for the request.
// Prior turns are passed as alternating user/model contents so the model
// sees the conversation, not a flattened transcript.
func (g *geminiCompleter) Complete(ctx context.Context, req Request) (string, error) {
	if g == nil || g.client == nil {
		return "", fmt.Errorf("gemini completer not configured")
	}

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := genai.RoleUser
		if turn.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: turn.Content}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: req.Prompt}},
	})

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", WrapError(fmt.Errorf("generate content failed: %w", err), ProviderGemini, 0)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			out.WriteString(part.Text)
		}
	}

	result := strings.TrimSpace(out.String())
	if result == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return result, nil
}

// Provider returns the provider type for this completer.
func (g *geminiCompleter) Provider() Provider {
	return ProviderGemini
}

// Close releases resources.
func (g *geminiCompleter) Close() error {
	// genai.Client does not require explicit cleanup in the current SDK
	return nil
}
