package domain

import (
	"context"
	"sync"
)

type usageKey struct{}

// Usage collects token usage for a single HTTP request.
// The handler puts a pointer into the context before calling a service;
// collaborator decorators add to it; the handler reads it for response headers.
// Safe for concurrent use: index builds and batch evaluation record from many goroutines.
type Usage struct {
	mu               sync.Mutex
	embeddingTokens  int
	completionTokens int
	used             bool
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *Usage) {
	u := &Usage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *Usage {
	u, _ := ctx.Value(usageKey{}).(*Usage)
	return u
}

// AddEmbeddingTokens records consumed embedding tokens.
func (u *Usage) AddEmbeddingTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.embeddingTokens += n
	u.used = true
	u.mu.Unlock()
}

// AddCompletionTokens records consumed completion tokens.
func (u *Usage) AddCompletionTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.completionTokens += n
	u.used = true
	u.mu.Unlock()
}

// Snapshot returns embedding tokens, completion tokens and whether any provider was called.
func (u *Usage) Snapshot() (embedding, completion int, used bool) {
	if u == nil {
		return 0, 0, false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.embeddingTokens, u.completionTokens, u.used
}
