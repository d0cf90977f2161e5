// Package outcome is a tagged Ok/Err result for per-item work whose failures
// are collected rather than returned immediately.
package outcome

import (
	"context"
	"errors"

	"github.com/kailas-cloud/headrag/internal/domain"
)

// Kind classifies a failure.
type Kind string

// Failure kinds, one per domain sentinel plus a catch-all.
const (
	KindNone                 Kind = ""
	KindInvalidConfiguration Kind = "invalid_configuration"
	KindHeaderGeneration     Kind = "header_generation"
	KindEmbeddingProvider    Kind = "embedding_provider"
	KindCompletionProvider   Kind = "completion_provider"
	KindRateLimited          Kind = "rate_limited"
	KindDimensionMismatch    Kind = "dimension_mismatch"
	KindDegenerateVector     Kind = "degenerate_vector"
	KindUnparsableScore      Kind = "unparsable_score"
	KindBudgetExceeded       Kind = "budget_exceeded"
	KindInvalidRequest       Kind = "invalid_request"
	KindIndexNotReady        Kind = "index_not_ready"
	KindCanceled             Kind = "canceled"
	KindInternal             Kind = "internal"
)

var kinds = []struct {
	sentinel error
	kind     Kind
}{
	{domain.ErrInvalidConfiguration, KindInvalidConfiguration},
	{domain.ErrHeaderGeneration, KindHeaderGeneration},
	{domain.ErrRateLimited, KindRateLimited},
	{domain.ErrEmbeddingProviderError, KindEmbeddingProvider},
	{domain.ErrCompletionProviderError, KindCompletionProvider},
	{domain.ErrEmbeddingDimensionMismatch, KindDimensionMismatch},
	{domain.ErrDegenerateVector, KindDegenerateVector},
	{domain.ErrUnparsableScore, KindUnparsableScore},
	{domain.ErrTokenBudgetExceeded, KindBudgetExceeded},
	{domain.ErrInvalidRequest, KindInvalidRequest},
	{domain.ErrIndexNotReady, KindIndexNotReady},
}

// KindOf maps an error to its kind.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	return KindInternal
}

// Outcome is either Ok(value) or Err(kind, detail).
type Outcome[T any] struct {
	value T
	kind  Kind
	err   error
}

// Ok creates a successful outcome.
func Ok[T any](value T) Outcome[T] { return Outcome[T]{value: value} }

// Err creates a failed outcome classified by KindOf.
func Err[T any](err error) Outcome[T] {
	return Outcome[T]{kind: KindOf(err), err: err}
}

// IsOk reports whether the outcome carries a value.
func (o Outcome[T]) IsOk() bool { return o.err == nil }

// Value returns the value; the zero value for failures.
func (o Outcome[T]) Value() T { return o.value }

// Kind returns the failure kind, KindNone on success.
func (o Outcome[T]) Kind() Kind { return o.kind }

// Err returns the error, if any.
func (o Outcome[T]) Err() error { return o.err }

// Detail returns the error message, empty on success.
func (o Outcome[T]) Detail() string {
	if o.err == nil {
		return ""
	}
	return o.err.Error()
}

// Unwrap returns (value, err) for callers that prefer the Go idiom.
func (o Outcome[T]) Unwrap() (T, error) { return o.value, o.err }
