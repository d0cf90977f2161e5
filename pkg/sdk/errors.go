package headrag

import "github.com/kailas-cloud/headrag/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidConfiguration       = domain.ErrInvalidConfiguration
	ErrInvalidRequest             = domain.ErrInvalidRequest
	ErrHeaderGeneration           = domain.ErrHeaderGeneration
	ErrEmbeddingProviderError     = domain.ErrEmbeddingProviderError
	ErrCompletionProviderError    = domain.ErrCompletionProviderError
	ErrRateLimited                = domain.ErrRateLimited
	ErrEmbeddingDimensionMismatch = domain.ErrEmbeddingDimensionMismatch
	ErrDegenerateVector           = domain.ErrDegenerateVector
	ErrUnparsableScore            = domain.ErrUnparsableScore
	ErrIndexNotReady              = domain.ErrIndexNotReady
)

// ChunkError carries the start offset of the chunk that failed to index.
type ChunkError = domain.ChunkError

// QueryError carries the query text of a failed search.
type QueryError = domain.QueryError
