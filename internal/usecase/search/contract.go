package search

import (
	"context"

	"github.com/kailas-cloud/headrag/internal/domain"
	"github.com/kailas-cloud/headrag/internal/domain/index"
)

// IndexProvider exposes the currently published index (nil until built).
type IndexProvider interface {
	Current() *index.Index
}

// Embedder vectorizes query text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
