// Package evaluation scores generated answers against reference answers.
package evaluation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domeval "github.com/kailas-cloud/headrag/internal/domain/evaluation"
	"github.com/kailas-cloud/headrag/internal/metrics"
)

// Instruction carries the rubric. Its three levels are part of the scoring contract.
const Instruction = "You are an evaluator. Compare the generated answer with the reference answer " +
	"for the given question and score it using this rubric:\n" +
	"1 = the generated answer is semantically equivalent to the reference answer.\n" +
	"0.5 = the generated answer is partially correct or incomplete.\n" +
	"0 = the generated answer is incorrect or unsupported by the context.\n" +
	"Reply with exactly one of 0, 0.5 or 1 and nothing else."

// Evaluator is a thin formatter and parser around the completion collaborator.
type Evaluator struct {
	completer Completer
	logger    *zap.Logger
}

// NewEvaluator creates an evaluator.
func NewEvaluator(completer Completer, logger *zap.Logger) *Evaluator {
	return &Evaluator{completer: completer, logger: logger}
}

// Evaluate scores generated against reference.
// Output outside the rubric yields an unscored record rather than an error;
// a collaborator failure is returned as an error.
func (e *Evaluator) Evaluate(
	ctx context.Context, query, generated, reference string,
) (domeval.Record, error) {
	res, err := e.completer.Complete(ctx, Instruction, FormatPrompt(query, generated, reference))
	if err != nil {
		return domeval.Record{}, fmt.Errorf("evaluate answer: %w", err)
	}

	score, err := domeval.ParseScore(res.Text)
	if err != nil {
		metrics.EvaluationScoresTotal.WithLabelValues("unscored").Inc()
		e.logger.Warn("Evaluator output outside rubric",
			zap.String("query", query),
			zap.String("raw_output", res.Text),
		)
		return domeval.NewUnscored(query, generated, reference, res.Text, err), nil
	}

	metrics.EvaluationScoresTotal.WithLabelValues(score.String()).Inc()
	return domeval.NewScored(query, generated, reference, score, res.Text), nil
}

// FormatPrompt renders the user content for one evaluation.
func FormatPrompt(query, generated, reference string) string {
	return fmt.Sprintf("Question: %s\n\nReference answer: %s\n\nGenerated answer: %s", query, reference, generated)
}
