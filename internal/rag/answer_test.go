package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	chromem "github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/manmad-web/sfubot/internal/errors"
	"github.com/manmad-web/sfubot/internal/genai"
	"github.com/manmad-web/sfubot/internal/history"
	"github.com/manmad-web/sfubot/internal/logger"
)

type fakeRetriever struct {
	results []chromem.Result
	err     error
}

func (f *fakeRetriever) Query(_ context.Context, _ string, _ int) ([]chromem.Result, error) {
	return f.results, f.err
}

type fakeCompleter struct {
	answer     string
	err        error
	lastPrompt string
}

func (f *fakeCompleter) Complete(_ context.Context, req genai.Request) (string, error) {
	f.lastPrompt = req.Prompt
	return f.answer, f.err
}

func (f *fakeCompleter) Provider() genai.Provider { return genai.ProviderGemini }
func (f *fakeCompleter) Close() error             { return nil }

func newTestAnswerer(r retriever, c genai.Completer, hist *history.Store) *Answerer {
	if hist == nil {
		hist = history.NewStore(10)
	}
	return NewAnswerer(r, c, hist, 0.75, 5, 800, logger.New("error"), nil)
}

func result(content, source string, similarity float32) chromem.Result {
	return chromem.Result{
		Content:    content,
		Similarity: similarity,
		Metadata:   map[string]string{"source": source},
	}
}

func TestAnswerGroundedWithSource(t *testing.T) {
	r := &fakeRetriever{results: []chromem.Result{
		result("short chunk", "https://www.sfu.ca/students.html", 0.9),
		result("a much longer chunk with more detail in it", "https://www.sfu.ca/other.html", 0.8),
	}}
	c := &fakeCompleter{answer: "The campus is in Burnaby."}
	a := newTestAnswerer(r, c, nil)

	got, err := a.Answer(context.Background(), "s1", "where is campus")

	require.NoError(t, err)
	assert.Contains(t, got, "The campus is in Burnaby.")
	// Citation comes from the highest scoring chunk, not the longest.
	assert.Contains(t, got, `Source: <a href="https://www.sfu.ca/students.html" target="_blank">https://www.sfu.ca/students.html</a>`)
	// Longest chunk leads the prompt context.
	assert.Less(t, strings.Index(c.lastPrompt, "a much longer chunk"), strings.Index(c.lastPrompt, "short chunk"))
}

func TestAnswerScoreAtThresholdPasses(t *testing.T) {
	r := &fakeRetriever{results: []chromem.Result{result("chunk", "https://sfu.ca", 0.75)}}
	a := newTestAnswerer(r, &fakeCompleter{answer: "ok"}, nil)

	_, err := a.Answer(context.Background(), "s1", "question")

	require.NoError(t, err)
}

func TestAnswerScoreBelowThresholdRejected(t *testing.T) {
	r := &fakeRetriever{results: []chromem.Result{result("chunk", "https://sfu.ca", 0.749)}}
	a := newTestAnswerer(r, &fakeCompleter{answer: "unused"}, nil)

	_, err := a.Answer(context.Background(), "s1", "question")

	assert.ErrorIs(t, err, apperrors.ErrLowRelevance)
}

func TestAnswerNoResultsRejected(t *testing.T) {
	a := newTestAnswerer(&fakeRetriever{}, &fakeCompleter{answer: "unused"}, nil)

	_, err := a.Answer(context.Background(), "s1", "question")

	assert.ErrorIs(t, err, apperrors.ErrLowRelevance)
}

func TestAnswerIndexNotReadyPropagates(t *testing.T) {
	r := &fakeRetriever{err: apperrors.ErrIndexNotReady}
	a := newTestAnswerer(r, &fakeCompleter{answer: "unused"}, nil)

	_, err := a.Answer(context.Background(), "s1", "question")

	assert.ErrorIs(t, err, apperrors.ErrIndexNotReady)
}

func TestAnswerEmptyCompletionRejected(t *testing.T) {
	r := &fakeRetriever{results: []chromem.Result{result("chunk", "https://sfu.ca", 0.9)}}
	a := newTestAnswerer(r, &fakeCompleter{answer: "   "}, nil)

	_, err := a.Answer(context.Background(), "s1", "question")

	assert.ErrorIs(t, err, apperrors.ErrLowRelevance)
}

func TestAnswerCompleterErrorPropagates(t *testing.T) {
	r := &fakeRetriever{results: []chromem.Result{result("chunk", "https://sfu.ca", 0.9)}}
	boom := errors.New("provider down")
	a := newTestAnswerer(r, &fakeCompleter{err: boom}, nil)

	_, err := a.Answer(context.Background(), "s1", "question")

	assert.ErrorIs(t, err, boom)
}

func TestAnswerIncludesRecentHistory(t *testing.T) {
	r := &fakeRetriever{results: []chromem.Result{result("chunk", "https://sfu.ca", 0.9)}}
	c := &fakeCompleter{answer: "ok"}
	hist := history.NewStore(10)
	hist.Append("s1", "user", "what programs exist")
	hist.Append("s1", "assistant", "Many programs.")
	a := newTestAnswerer(r, c, hist)

	_, err := a.Answer(context.Background(), "s1", "tell me more")

	require.NoError(t, err)
	assert.Contains(t, c.lastPrompt, "Previous conversation context:")
	assert.Contains(t, c.lastPrompt, "user: what programs exist")
	assert.Contains(t, c.lastPrompt, "Current question: tell me more")
}

func TestAnswerTruncatesLongAnswers(t *testing.T) {
	r := &fakeRetriever{results: []chromem.Result{result("chunk", "https://sfu.ca/page", 0.9)}}
	long := strings.Repeat("Sentence here. ", 100)
	a := newTestAnswerer(r, &fakeCompleter{answer: long}, nil)

	got, err := a.Answer(context.Background(), "s1", "question")

	require.NoError(t, err)
	assert.Contains(t, got, "For full details, please click")
	assert.Less(t, len(got), len(long))
}

func TestAnswerConvertsNewlinesToBreaks(t *testing.T) {
	r := &fakeRetriever{results: []chromem.Result{result("chunk", "https://sfu.ca", 0.9)}}
	a := newTestAnswerer(r, &fakeCompleter{answer: "line one\nline two"}, nil)

	got, err := a.Answer(context.Background(), "s1", "question")

	require.NoError(t, err)
	assert.Contains(t, got, "line one<br>line two")
	assert.NotContains(t, got, "line one\nline two")
}

func TestAnswerOmitsSourceWithoutMetadata(t *testing.T) {
	r := &fakeRetriever{results: []chromem.Result{{Content: "chunk", Similarity: 0.9}}}
	a := newTestAnswerer(r, &fakeCompleter{answer: "plain answer"}, nil)

	got, err := a.Answer(context.Background(), "s1", "question")

	require.NoError(t, err)
	assert.NotContains(t, got, "Source:")
}
