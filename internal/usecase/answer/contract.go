package answer

import (
	"context"

	"github.com/kailas-cloud/headrag/internal/domain"
	"github.com/kailas-cloud/headrag/internal/domain/search/request"
	"github.com/kailas-cloud/headrag/internal/domain/search/result"
)

// Completer generates text from a system instruction and user content.
type Completer interface {
	Complete(ctx context.Context, systemInstruction, userContent string) (domain.CompletionResult, error)
}

// Searcher retrieves the ranked context for a query.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}
