// Package retry decorates provider collaborators with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/kailas-cloud/headrag/internal/domain"
	"github.com/kailas-cloud/headrag/internal/metrics"
)

// Policy bounds the retry loop. MaxAttempts counts the first call.
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy is used when configuration leaves retries unset.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     4,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     8 * time.Second,
	}
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.MaxInterval = p.MaxInterval
	eb.MaxElapsedTime = 0

	attempts := max(p.MaxAttempts, 1)
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)
}

// Retryable reports whether err is a transient provider failure.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return pe.Temporary()
	}
	return false
}

func do[T any](
	ctx context.Context, p Policy, op string, logger *zap.Logger, fn func() (T, error),
) (T, error) {
	attempt := 0
	operation := func() (T, error) {
		attempt++
		v, err := fn()
		if err != nil && !Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	notify := func(err error, wait time.Duration) {
		metrics.ProviderRetriesTotal.WithLabelValues(op).Inc()
		logger.Warn("Retrying provider call",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
	return backoff.RetryNotifyWithData(operation, p.backOff(ctx), notify)
}

// Embedder retries transient embedding failures.
type Embedder struct {
	inner  domain.Embedder
	policy Policy
	logger *zap.Logger
}

// NewEmbedder wraps inner with the retry policy.
func NewEmbedder(inner domain.Embedder, policy Policy, logger *zap.Logger) *Embedder {
	return &Embedder{inner: inner, policy: policy, logger: logger}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return do(ctx, e.policy, metrics.OpEmbedding, e.logger, func() (domain.EmbeddingResult, error) {
		return e.inner.Embed(ctx, text)
	})
}

// Completer retries transient completion failures.
type Completer struct {
	inner  domain.Completer
	policy Policy
	logger *zap.Logger
}

// NewCompleter wraps inner with the retry policy.
func NewCompleter(inner domain.Completer, policy Policy, logger *zap.Logger) *Completer {
	return &Completer{inner: inner, policy: policy, logger: logger}
}

// Complete implements domain.Completer.
func (c *Completer) Complete(
	ctx context.Context, systemInstruction, userContent string,
) (domain.CompletionResult, error) {
	return do(ctx, c.policy, metrics.OpCompletion, c.logger, func() (domain.CompletionResult, error) {
		return c.inner.Complete(ctx, systemInstruction, userContent)
	})
}
