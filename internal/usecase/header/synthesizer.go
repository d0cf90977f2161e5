// Package header synthesizes a short contextual title for each chunk.
package header

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/headrag/internal/domain"
)

// Instruction is the fixed system instruction for header synthesis.
const Instruction = "Produce a concise, informative title for this text."

// Synthesizer produces chunk headers through a completion collaborator.
type Synthesizer struct {
	completer Completer
}

// New creates a header synthesizer.
func New(completer Completer) *Synthesizer {
	return &Synthesizer{completer: completer}
}

// Synthesize returns the header for chunkText.
// A collaborator failure or blank output yields domain.ErrHeaderGeneration.
func (s *Synthesizer) Synthesize(ctx context.Context, chunkText string) (string, error) {
	res, err := s.completer.Complete(ctx, Instruction, chunkText)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrHeaderGeneration, err)
	}

	header := strings.TrimSpace(res.Text)
	if header == "" {
		return "", fmt.Errorf("empty completion: %w", domain.ErrHeaderGeneration)
	}
	return header, nil
}
