package llm

import "context"

// TokenBudget is the local interface for token budget enforcement.
type TokenBudget interface {
	Check(ctx context.Context) error
	Record(tokens int64)
}
