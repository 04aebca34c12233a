package genai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manmad-web/sfubot/internal/logger"
)

// fakeCompleter returns scripted results for Complete calls.
type fakeCompleter struct {
	provider Provider
	results  []fakeResult
	calls    int
}

type fakeResult struct {
	text string
	err  error
}

func (f *fakeCompleter) Complete(_ context.Context, _ Request) (string, error) {
	if f.calls >= len(f.results) {
		return "", errors.New("no more scripted results")
	}
	r := f.results[f.calls]
	f.calls++
	return r.text, r.err
}

func (f *fakeCompleter) Provider() Provider { return f.provider }
func (f *fakeCompleter) Close() error       { return nil }

func fastRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func testLogger() *logger.Logger {
	return logger.New("error")
}

func TestCompletePrimarySucceeds(t *testing.T) {
	primary := &fakeCompleter{provider: ProviderGemini, results: []fakeResult{{text: "answer"}}}
	fallback := &fakeCompleter{provider: ProviderGroq}
	f := NewFallbackCompleter(primary, fallback, fastRetryConfig(), testLogger(), nil)

	got, err := f.Complete(context.Background(), Request{Prompt: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "answer", got)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestCompleteRetriesTransientError(t *testing.T) {
	primary := &fakeCompleter{provider: ProviderGemini, results: []fakeResult{
		{err: errors.New("503 service unavailable")},
		{text: "recovered"},
	}}
	f := NewFallbackCompleter(primary, nil, fastRetryConfig(), testLogger(), nil)

	got, err := f.Complete(context.Background(), Request{Prompt: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 2, primary.calls)
}

func TestCompleteFallsBackAfterRetriesExhausted(t *testing.T) {
	transient := errors.New("rate limit exceeded")
	primary := &fakeCompleter{provider: ProviderGemini, results: []fakeResult{
		{err: transient}, {err: transient}, {err: transient},
	}}
	fallback := &fakeCompleter{provider: ProviderGroq, results: []fakeResult{{text: "from groq"}}}
	f := NewFallbackCompleter(primary, fallback, fastRetryConfig(), testLogger(), nil)

	got, err := f.Complete(context.Background(), Request{Prompt: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "from groq", got)
	assert.Equal(t, 3, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestCompleteQuotaErrorSkipsRetry(t *testing.T) {
	primary := &fakeCompleter{provider: ProviderGemini, results: []fakeResult{
		{err: errors.New("quota exceeded for this month")},
	}}
	fallback := &fakeCompleter{provider: ProviderGroq, results: []fakeResult{{text: "from groq"}}}
	f := NewFallbackCompleter(primary, fallback, fastRetryConfig(), testLogger(), nil)

	got, err := f.Complete(context.Background(), Request{Prompt: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "from groq", got)
	// Quota exhaustion goes straight to the fallback provider.
	assert.Equal(t, 1, primary.calls)
}

func TestCompletePermanentErrorFailsWithoutFallback(t *testing.T) {
	primary := &fakeCompleter{provider: ProviderGemini, results: []fakeResult{
		{err: errors.New("401 invalid api key")},
	}}
	fallback := &fakeCompleter{provider: ProviderGroq, results: []fakeResult{{text: "unused"}}}
	f := NewFallbackCompleter(primary, fallback, fastRetryConfig(), testLogger(), nil)

	_, err := f.Complete(context.Background(), Request{Prompt: "hi"})

	require.Error(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestCompleteBothProvidersFail(t *testing.T) {
	transient := errors.New("connection refused")
	primary := &fakeCompleter{provider: ProviderGemini, results: []fakeResult{
		{err: transient}, {err: transient}, {err: transient},
	}}
	fallback := &fakeCompleter{provider: ProviderGroq, results: []fakeResult{
		{err: transient}, {err: transient}, {err: transient},
	}}
	f := NewFallbackCompleter(primary, fallback, fastRetryConfig(), testLogger(), nil)

	_, err := f.Complete(context.Background(), Request{Prompt: "hi"})

	require.Error(t, err)
	assert.ErrorIs(t, err, transient)
}

func TestCompleteNoProviders(t *testing.T) {
	f := NewFallbackCompleter(nil, nil, fastRetryConfig(), testLogger(), nil)

	_, err := f.Complete(context.Background(), Request{Prompt: "hi"})

	require.Error(t, err)
}

func TestCompleteUsesFallbackWhenPrimaryMissing(t *testing.T) {
	fallback := &fakeCompleter{provider: ProviderGroq, results: []fakeResult{{text: "only groq"}}}
	f := NewFallbackCompleter(nil, fallback, fastRetryConfig(), testLogger(), nil)

	got, err := f.Complete(context.Background(), Request{Prompt: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "only groq", got)
}

func TestCompleteRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := &fakeCompleter{provider: ProviderGemini, results: []fakeResult{{text: "unused"}}}
	f := NewFallbackCompleter(primary, nil, fastRetryConfig(), testLogger(), nil)

	_, err := f.Complete(ctx, Request{Prompt: "hi"})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, primary.calls)
}

func TestProviderReporting(t *testing.T) {
	primary := &fakeCompleter{provider: ProviderGemini}
	fallback := &fakeCompleter{provider: ProviderGroq}

	assert.Equal(t, ProviderGemini, NewFallbackCompleter(primary, fallback, fastRetryConfig(), testLogger(), nil).Provider())
	assert.Equal(t, ProviderGroq, NewFallbackCompleter(nil, fallback, fastRetryConfig(), testLogger(), nil).Provider())
	assert.True(t, NewFallbackCompleter(primary, nil, fastRetryConfig(), testLogger(), nil).IsEnabled())
	assert.False(t, NewFallbackCompleter(nil, nil, fastRetryConfig(), testLogger(), nil).IsEnabled())
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorAction
	}{
		{"nil", nil, ActionFail},
		{"canceled", context.Canceled, ActionFail},
		{"deadline", context.DeadlineExceeded, ActionRetry},
		{"rate limit", errors.New("429 too many requests"), ActionRetry},
		{"server error", errors.New("internal server error"), ActionRetry},
		{"quota", errors.New("monthly limit reached, check billing"), ActionFallback},
		{"bad key", errors.New("401 unauthorized"), ActionFail},
		{"not found", errors.New("404 model not found"), ActionFail},
		{"wrapped status", WrapError(errors.New("boom"), ProviderGroq, 503), ActionRetry},
		{"wrapped client error", WrapError(errors.New("boom"), ProviderGroq, 422), ActionFail},
		{"unknown", errors.New("something odd"), ActionRetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	assert.Zero(t, CalculateBackoff(0, time.Second, time.Minute))

	for attempt := 1; attempt <= 5; attempt++ {
		d := CalculateBackoff(attempt, 100*time.Millisecond, time.Second)
		assert.GreaterOrEqual(t, d, time.Duration(0), fmt.Sprintf("attempt %d", attempt))
		assert.LessOrEqual(t, d, time.Second, fmt.Sprintf("attempt %d", attempt))
	}
}
