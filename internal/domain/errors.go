package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration signals bad chunking or ranking parameters.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrHeaderGeneration signals a failed or empty header synthesis.
	ErrHeaderGeneration = errors.New("header generation failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCompletionProviderError signals a text-generation provider failure.
	ErrCompletionProviderError = errors.New("completion provider error")
	// ErrRateLimited signals a rate limit hit on an external provider.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingDimensionMismatch signals vectors of different dimensionality.
	ErrEmbeddingDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrDegenerateVector signals a zero-norm vector in a cosine similarity.
	ErrDegenerateVector = errors.New("degenerate vector")
	// ErrUnparsableScore signals evaluator output outside the {0, 0.5, 1} rubric.
	ErrUnparsableScore = errors.New("unparsable score")
	// ErrIndexNotReady signals a search before the index was built.
	ErrIndexNotReady = errors.New("index not ready")
	// ErrInvalidRequest signals a malformed query or request body.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrTokenBudgetExceeded signals the daily or monthly provider token budget is spent.
	ErrTokenBudgetExceeded = errors.New("token budget exceeded")
)

// ChunkError wraps a per-chunk failure with the chunk's start offset.
type ChunkError struct {
	Offset int
	Err    error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk at offset %d: %s", e.Offset, e.Err.Error())
}

func (e *ChunkError) Unwrap() error { return e.Err }

// NewChunkError creates a chunk error.
func NewChunkError(offset int, err error) error {
	return &ChunkError{Offset: offset, Err: err}
}

// QueryError wraps a per-query failure with the query text.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q: %s", e.Query, e.Err.Error())
}

func (e *QueryError) Unwrap() error { return e.Err }

// NewQueryError creates a query error.
func NewQueryError(query string, err error) error {
	return &QueryError{Query: query, Err: err}
}

// ProviderError carries the HTTP status of a failed external provider call.
// StatusCode is 0 for transport-level failures (connection refused, timeout).
type ProviderError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("provider request failed: %s", e.Err.Error())
	}
	return fmt.Sprintf("provider API error %d: %s: %s", e.StatusCode, e.Detail, e.Err.Error())
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Temporary reports whether retrying the call may succeed:
// transport failures, 408, 429 and 5xx.
func (e *ProviderError) Temporary() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == 408, e.StatusCode == 429:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}
