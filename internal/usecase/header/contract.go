package header

import (
	"context"

	"github.com/kailas-cloud/headrag/internal/domain"
)

// Completer generates text from a system instruction and user content.
type Completer interface {
	Complete(ctx context.Context, systemInstruction, userContent string) (domain.CompletionResult, error)
}
