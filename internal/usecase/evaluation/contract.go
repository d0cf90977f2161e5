package evaluation

import (
	"context"

	"github.com/kailas-cloud/headrag/internal/domain"
	"github.com/kailas-cloud/headrag/internal/domain/search/request"
	"github.com/kailas-cloud/headrag/internal/usecase/answer"
)

// Completer generates text from a system instruction and user content.
type Completer interface {
	Complete(ctx context.Context, systemInstruction, userContent string) (domain.CompletionResult, error)
}

// Asker retrieves context and synthesizes an answer.
type Asker interface {
	Ask(ctx context.Context, req *request.Request) (answer.Answer, error)
}
