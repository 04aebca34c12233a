package rag

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	apperrors "github.com/manmad-web/sfubot/internal/errors"
	"github.com/manmad-web/sfubot/internal/genai"
	"github.com/manmad-web/sfubot/internal/history"
	"github.com/manmad-web/sfubot/internal/logger"
	"github.com/manmad-web/sfubot/internal/metrics"
)

// groundedSystemPrompt constrains answers to the retrieved context.
const groundedSystemPrompt = `You are a chat bot called AskSfu.
When listing multiple points, please separate each point with a <br> tag.
When providing information about faculty members, only provide text-based information such as contact details, office locations, titles, and research interests. Do not mention, describe, or reference any photos or images.
Answer the question based only on the following context:<br>
%s<br>
Question: %s`

// sourceNotAvailable marks chunks without citation metadata.
const sourceNotAvailable = "Source not available"

// greetingReply never gets a source citation appended.
const greetingReply = "hello! how can i assist you today?"

// historyTurns is how many recent messages prefix the question.
const historyTurns = 4

// answerMaxTokens caps the grounded completion length.
const answerMaxTokens = 1000

// retriever is the slice of Index that answering needs.
type retriever interface {
	Query(ctx context.Context, query string, topK int) ([]chromem.Result, error)
}

// Answerer composes grounded answers from the document index.
type Answerer struct {
	index     retriever
	completer genai.Completer
	history   *history.Store
	threshold float64
	topK      int
	maxChars  int
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// NewAnswerer creates an answerer over the index. Answers scoring below
// threshold are rejected with ErrLowRelevance so the caller can fall back.
func NewAnswerer(index retriever, completer genai.Completer, hist *history.Store, threshold float64, topK, maxChars int, log *logger.Logger, m *metrics.Metrics) *Answerer {
	return &Answerer{
		index:     index,
		completer: completer,
		history:   hist,
		threshold: threshold,
		topK:      topK,
		maxChars:  maxChars,
		log:       log.WithModule("rag"),
		metrics:   m,
	}
}

// Answer retrieves context for the message and generates a grounded reply
// with a source citation. Returns ErrIndexNotReady before the index is
// built and ErrLowRelevance when retrieval scores below the gate.
func (a *Answerer) Answer(ctx context.Context, sessionID, message string) (string, error) {
	results, err := a.index.Query(ctx, message, a.topK)
	if err != nil {
		a.recordOutcome(outcomeFor(err))
		return "", err
	}
	if len(results) == 0 {
		a.recordOutcome("low_relevance")
		return "", apperrors.ErrLowRelevance
	}

	topScore := float64(results[0].Similarity)
	if topScore < a.threshold {
		a.log.WithSessionID(sessionID).WithFields(map[string]any{
			"score":     topScore,
			"threshold": a.threshold,
		}).Debug("retrieval below relevance gate")
		a.recordOutcome("low_relevance")
		return "", apperrors.ErrLowRelevance
	}

	// Citation always points at the best scoring chunk.
	sourceURL := sourceNotAvailable
	if src, ok := results[0].Metadata["source"]; ok && src != "" {
		sourceURL = src
	}

	// Longest chunks first so the densest context leads the prompt.
	sort.Slice(results, func(i, j int) bool {
		return len(results[i].Content) > len(results[j].Content)
	})
	contents := make([]string, len(results))
	for i, r := range results {
		contents[i] = r.Content
	}
	contextText := strings.Join(contents, "\n\n")

	question := message
	if recent := a.history.Recent(sessionID, historyTurns); len(recent) > 0 {
		lines := make([]string, len(recent))
		for i, msg := range recent {
			lines[i] = fmt.Sprintf("%s: %s", msg.Role, msg.Content)
		}
		question = fmt.Sprintf("Previous conversation context:\n%s\n\nCurrent question: %s",
			strings.Join(lines, "\n"), message)
	}

	answer, err := a.completer.Complete(ctx, genai.Request{
		Prompt:    fmt.Sprintf(groundedSystemPrompt, contextText, question),
		MaxTokens: answerMaxTokens,
	})
	if err != nil {
		a.recordOutcome("error")
		return "", fmt.Errorf("grounded completion: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		a.recordOutcome("low_relevance")
		return "", apperrors.ErrLowRelevance
	}

	if len(answer) > a.maxChars {
		answer = Truncate(answer, a.maxChars, sourceURL)
	}
	answer = strings.ReplaceAll(answer, "\n", "<br>")

	if sourceURL != sourceNotAvailable && strings.ToLower(answer) != greetingReply {
		answer += fmt.Sprintf(`<br><br>Source: <a href="%s" target="_blank">%s</a>`, sourceURL, sourceURL)
	}

	a.recordOutcome("answered")
	return answer, nil
}

func (a *Answerer) recordOutcome(outcome string) {
	if a.metrics != nil {
		a.metrics.RetrievalQueriesTotal.WithLabelValues(outcome).Inc()
	}
}

func outcomeFor(err error) string {
	if errors.Is(err, apperrors.ErrIndexNotReady) {
		return "not_ready"
	}
	return "error"
}
