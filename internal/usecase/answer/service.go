// Package answer synthesizes a grounded answer from ranked chunks.
package answer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/headrag/internal/domain/search/request"
	"github.com/kailas-cloud/headrag/internal/domain/search/result"
)

// Instruction is the fixed system instruction for answer synthesis.
const Instruction = "You are a helpful assistant. Answer the question using only the provided context. " +
	"If the context does not contain the answer, say that you do not know."

// Answer is a generated response with the chunks it was grounded on.
type Answer struct {
	Text    string
	Sources []result.Result
}

// Service retrieves context and asks the completion collaborator for an answer.
type Service struct {
	search    Searcher
	completer Completer
	logger    *zap.Logger
}

// New creates an answer service.
func New(search Searcher, completer Completer, logger *zap.Logger) *Service {
	return &Service{search: search, completer: completer, logger: logger}
}

// Ask retrieves the top-k chunks for req and answers from them.
func (s *Service) Ask(ctx context.Context, req *request.Request) (Answer, error) {
	sources, err := s.search.Search(ctx, req)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve context: %w", err)
	}

	text, err := s.Answer(ctx, req.Query(), sources)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Text: text, Sources: sources}, nil
}

// Answer formats the ranked chunks and the question and calls the completion collaborator.
func (s *Service) Answer(ctx context.Context, query string, chunks []result.Result) (string, error) {
	res, err := s.completer.Complete(ctx, Instruction, FormatPrompt(query, chunks))
	if err != nil {
		return "", fmt.Errorf("synthesize answer: %w", err)
	}

	s.logger.Debug("Answer synthesized",
		zap.Int("context_chunks", len(chunks)),
		zap.Int("answer_len", len(res.Text)),
	)
	return strings.TrimSpace(res.Text), nil
}

// FormatPrompt renders the user content: numbered chunks (header, then body) followed by the question.
func FormatPrompt(query string, chunks []result.Result) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i := range chunks {
		c := chunks[i].Chunk()
		fmt.Fprintf(&b, "\n[%d] %s\n%s\n", i+1, c.Header(), c.Text())
	}
	fmt.Fprintf(&b, "\nQuestion: %s", query)
	return b.String()
}
