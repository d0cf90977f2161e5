package domain

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Embedder turns text into a vector. Every layer from the provider adapter
// to the cache implements it.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the vector and the provider's token usage.
// Cache hits report zero tokens.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// instructed prefixes every text with a fixed instruction before embedding.
type instructed struct {
	inner  Embedder
	prefix string
}

// WithInstruction wraps inner so that every text is embedded as instruction + text,
// the form instruction-tuned models expect for documents and queries.
// A blank instruction returns inner unchanged. A space separates the two
// unless the instruction already ends in whitespace.
func WithInstruction(inner Embedder, instruction string) Embedder {
	if strings.TrimSpace(instruction) == "" {
		return inner
	}
	prefix := instruction
	if r, _ := utf8.DecodeLastRuneInString(prefix); !unicode.IsSpace(r) {
		prefix += " "
	}
	return &instructed{inner: inner, prefix: prefix}
}

func (e *instructed) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	res, err := e.inner.Embed(ctx, e.prefix+text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instructed embed: %w", err)
	}
	return res, nil
}
