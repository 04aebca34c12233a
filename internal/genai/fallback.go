package genai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/manmad-web/sfubot/internal/logger"
	"github.com/manmad-web/sfubot/internal/metrics"
)

// FallbackCompleter wraps a primary and fallback Completer with a
// three-layer strategy:
//  1. retry with backoff on the same provider
//  2. cross-provider fallback
//  3. surface the error to the caller for graceful degradation
type FallbackCompleter struct {
	primary     Completer
	fallback    Completer
	retryConfig RetryConfig
	log         *logger.Logger
	metrics     *metrics.Metrics
}

// NewFallbackCompleter creates a fallback-enabled completer.
// If fallback is nil, only retry logic is applied to the primary provider.
// The metrics argument may be nil.
func NewFallbackCompleter(primary, fallback Completer, cfg RetryConfig, log *logger.Logger, m *metrics.Metrics) *FallbackCompleter {
	return &FallbackCompleter{
		primary:     primary,
		fallback:    fallback,
		retryConfig: cfg,
		log:         log.WithModule("genai"),
		metrics:     m,
	}
}

// Complete tries the primary completer first with retry, then falls back.
func (f *FallbackCompleter) Complete(ctx context.Context, req Request) (string, error) {
	if f == nil || f.primary == nil {
		if f != nil && f.fallback != nil {
			return f.completeWithRetry(ctx, f.fallback, req)
		}
		return "", errors.New("no completion provider configured")
	}

	start := time.Now()
	provider := f.primary.Provider()

	result, err := f.completeWithRetry(ctx, f.primary, req)
	if err == nil {
		f.recordSuccess(provider, start)
		return result, nil
	}

	action := ClassifyError(err)
	f.log.WithError(err).WithFields(map[string]any{
		"provider": provider,
		"action":   action.String(),
		"duration": time.Since(start).String(),
	}).Warn("primary completer failed")

	if action == ActionFail || f.fallback == nil {
		f.recordError(provider)
		return "", err
	}

	fallbackProvider := f.fallback.Provider()
	f.log.WithFields(map[string]any{
		"from": provider,
		"to":   fallbackProvider,
	}).Info("falling back to secondary provider")

	fallbackStart := time.Now()
	result, err = f.completeWithRetry(ctx, f.fallback, req)
	if err == nil {
		f.recordSuccess(fallbackProvider, fallbackStart)
		if f.metrics != nil {
			f.metrics.LLMFallbacksTotal.WithLabelValues(string(provider), string(fallbackProvider)).Inc()
		}
		return result, nil
	}

	f.recordError(fallbackProvider)
	f.log.WithError(err).WithFields(map[string]any{
		"primary":  provider,
		"fallback": fallbackProvider,
	}).Error("all completion providers failed")

	return "", fmt.Errorf("all providers failed: %w", err)
}

// completeWithRetry attempts a completion with retry on transient errors.
func (f *FallbackCompleter) completeWithRetry(ctx context.Context, c Completer, req Request) (string, error) {
	var lastErr error

	for attempt := range f.retryConfig.MaxAttempts {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		result, err := c.Complete(ctx, req)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if ClassifyError(err) != ActionRetry {
			return "", err
		}
		if attempt == f.retryConfig.MaxAttempts-1 {
			break
		}

		backoff := CalculateBackoff(attempt+1, f.retryConfig.InitialDelay, f.retryConfig.MaxDelay)
		f.log.WithError(err).WithFields(map[string]any{
			"provider": c.Provider(),
			"attempt":  attempt + 1,
			"backoff":  backoff.String(),
		}).Debug("retrying completion")

		if err := Sleep(ctx, backoff); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

// Provider returns the primary provider type.
func (f *FallbackCompleter) Provider() Provider {
	if f == nil || f.primary == nil {
		if f != nil && f.fallback != nil {
			return f.fallback.Provider()
		}
		return ""
	}
	return f.primary.Provider()
}

// IsEnabled reports whether at least one provider is configured.
func (f *FallbackCompleter) IsEnabled() bool {
	return f != nil && (f.primary != nil || f.fallback != nil)
}

// Close closes both completers.
func (f *FallbackCompleter) Close() error {
	if f == nil {
		return nil
	}

	var errs []error
	if f.primary != nil {
		if err := f.primary.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if f.fallback != nil {
		if err := f.fallback.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func (f *FallbackCompleter) recordSuccess(provider Provider, start time.Time) {
	if f.metrics == nil {
		return
	}
	f.metrics.LLMRequestsTotal.WithLabelValues(string(provider), "success").Inc()
	f.metrics.LLMDurationSeconds.WithLabelValues(string(provider)).Observe(time.Since(start).Seconds())
}

func (f *FallbackCompleter) recordError(provider Provider) {
	if f.metrics == nil {
		return
	}
	f.metrics.LLMRequestsTotal.WithLabelValues(string(provider), "error").Inc()
}
