package domain

import "context"

// Completer is the generative-completion contract shared by header synthesis,
// answer synthesis and evaluation scoring.
type Completer interface {
	Complete(ctx context.Context, systemInstruction, userContent string) (CompletionResult, error)
}

// CompletionResult carries generated text and token usage.
type CompletionResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
