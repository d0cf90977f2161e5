package headrag

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/headrag/internal/domain"
	domeval "github.com/kailas-cloud/headrag/internal/domain/evaluation"
	"github.com/kailas-cloud/headrag/internal/domain/search/result"
	evaluationuc "github.com/kailas-cloud/headrag/internal/usecase/evaluation"
)

// Embedder converts text to a vector embedding.
// Every call for one client must return vectors of the same length.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult holds the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Completer generates text from a system instruction and user content.
// Implementations should decode at the lowest temperature they support.
type Completer interface {
	Complete(ctx context.Context, systemInstruction, userContent string) (CompletionResult, error)
}

// CompletionResult holds generated text and token usage.
type CompletionResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Chunk is an indexed window of the document.
type Chunk struct {
	StartOffset int
	Length      int
	Text        string
	Header      string
}

// SearchResult is a ranked chunk with its fused similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// SearchOptions configures a search. Zero values select the client defaults.
type SearchOptions struct {
	TopK     int
	MinScore float64
}

// Answer is a generated response with the chunks it was grounded on.
type Answer struct {
	Text    string
	Sources []SearchResult
}

// Case is one reference question with its ideal answer.
type Case struct {
	Question    string
	IdealAnswer string
}

// Evaluation is the rubric judgment of one generated answer.
// Scored is false when the evaluator output was not one of 0, 0.5 or 1.
type Evaluation struct {
	Question        string
	GeneratedAnswer string
	ReferenceAnswer string
	Score           float64
	Scored          bool
	RawOutput       string
}

// CaseResult is the outcome of one case in an evaluation run. Err is set when
// retrieval, answering or the evaluator call failed outright.
type CaseResult struct {
	Case       Case
	Evaluation Evaluation
	Err        error
}

// Report summarizes an evaluation run.
// MeanScore is computed over scored cases only; unscored cases never count as 0.
type Report struct {
	RunID     string
	Duration  time.Duration
	Results   []CaseResult
	Scored    int
	Unscored  int
	Failed    int
	MeanScore float64
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// completerAdapter wraps public Completer to satisfy internal domain.Completer.
type completerAdapter struct {
	inner Completer
}

func (a *completerAdapter) Complete(
	ctx context.Context, systemInstruction, userContent string,
) (domain.CompletionResult, error) {
	r, err := a.inner.Complete(ctx, systemInstruction, userContent)
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("complete: %w", err)
	}
	return domain.CompletionResult{
		Text:             r.Text,
		PromptTokens:     r.PromptTokens,
		CompletionTokens: r.CompletionTokens,
		TotalTokens:      r.TotalTokens,
	}, nil
}

func fromResults(rs []result.Result) []SearchResult {
	out := make([]SearchResult, len(rs))
	for i := range rs {
		c := rs[i].Chunk()
		out[i] = SearchResult{
			Chunk: Chunk{
				StartOffset: c.StartOffset(),
				Length:      c.Length(),
				Text:        c.Text(),
				Header:      c.Header(),
			},
			Score: rs[i].Score(),
		}
	}
	return out
}

func fromRecord(rec domeval.Record) Evaluation {
	score, ok := rec.Score()
	return Evaluation{
		Question:        rec.Query(),
		GeneratedAnswer: rec.GeneratedAnswer(),
		ReferenceAnswer: rec.ReferenceAnswer(),
		Score:           float64(score),
		Scored:          ok,
		RawOutput:       rec.RawOutput(),
	}
}

func fromReport(r *evaluationuc.Report) *Report {
	out := &Report{
		RunID:     r.RunID,
		Duration:  r.Duration,
		Results:   make([]CaseResult, len(r.Results)),
		Scored:    r.Scored,
		Unscored:  r.Unscored,
		Failed:    r.Failed,
		MeanScore: r.MeanScore,
	}
	for i, res := range r.Results {
		cr := CaseResult{Case: Case{Question: res.Case.Question, IdealAnswer: res.Case.IdealAnswer}}
		if err := res.Outcome.Err(); err != nil {
			cr.Err = err
		} else {
			cr.Evaluation = fromRecord(res.Outcome.Value())
		}
		out.Results[i] = cr
	}
	return out
}
