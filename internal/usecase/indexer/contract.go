package indexer

import (
	"context"

	"github.com/kailas-cloud/headrag/internal/domain"
)

// HeaderSynthesizer produces a contextual header for a chunk body.
type HeaderSynthesizer interface {
	Synthesize(ctx context.Context, chunkText string) (string, error)
}

// Embedder vectorizes chunk bodies and headers.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
