package headrag

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/kailas-cloud/headrag/internal/usecase/answer"
	"github.com/kailas-cloud/headrag/internal/usecase/evaluation"
	"github.com/kailas-cloud/headrag/internal/usecase/header"
)

// letterEmbedder embeds text as a histogram of the uppercase letters A-Z.
type letterEmbedder struct {
	calls atomic.Int32
	err   error
}

func (e *letterEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	e.calls.Add(1)
	if e.err != nil {
		return EmbeddingResult{}, e.err
	}
	vec := make([]float32, 26)
	for _, r := range text {
		if r >= 'A' && r <= 'Z' {
			vec[r-'A']++
		}
	}
	return EmbeddingResult{Embedding: vec, TotalTokens: len(text)}, nil
}

// scriptedCompleter titles a chunk with its first three characters,
// answers with the first source header and scores with a fixed reply.
type scriptedCompleter struct {
	score     string
	headerErr error
	lastUser  string
}

func (c *scriptedCompleter) Complete(_ context.Context, system, user string) (CompletionResult, error) {
	switch system {
	case header.Instruction:
		if c.headerErr != nil {
			return CompletionResult{}, c.headerErr
		}
		n := min(3, len(user))
		return CompletionResult{Text: user[:n], TotalTokens: 1}, nil
	case answer.Instruction:
		c.lastUser = user
		return CompletionResult{Text: "  grounded answer \n", TotalTokens: 2}, nil
	case evaluation.Instruction:
		return CompletionResult{Text: c.score, TotalTokens: 1}, nil
	default:
		return CompletionResult{Text: strings.ToUpper(user)}, nil
	}
}
