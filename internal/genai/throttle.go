package genai

import (
	"context"

	"github.com/manmad-web/sfubot/internal/ratelimit"
)

// ThrottledCompleter wraps a Completer with a token bucket so bursts of
// chat traffic cannot exhaust provider quota.
type ThrottledCompleter struct {
	inner   Completer
	limiter *ratelimit.Limiter
}

func NewThrottledCompleter(inner Completer, limiter *ratelimit.Limiter) *ThrottledCompleter {
	return &ThrottledCompleter{inner: inner, limiter: limiter}
}

// Complete waits for a token before delegating, returning the context
// error if the caller gives up first.
func (t *ThrottledCompleter) Complete(ctx context.Context, req Request) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return t.inner.Complete(ctx, req)
}

func (t *ThrottledCompleter) Provider() Provider {
	return t.inner.Provider()
}

func (t *ThrottledCompleter) Close() error {
	return t.inner.Close()
}
