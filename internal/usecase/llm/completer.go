package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/headrag/internal/domain"
)

// InstrumentedCompleter wraps a Completer with budget enforcement, usage accounting and logging.
type InstrumentedCompleter struct {
	inner    domain.Completer
	provider string
	model    string
	budget   TokenBudget
	logger   *zap.Logger
}

// NewInstrumentedCompleter wraps a completer. budget may be nil.
func NewInstrumentedCompleter(
	inner domain.Completer, provider, model string,
	budget TokenBudget, logger *zap.Logger,
) *InstrumentedCompleter {
	return &InstrumentedCompleter{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		logger:   logger,
	}
}

// Complete checks the budget, delegates to the inner completer and records usage.
func (p *InstrumentedCompleter) Complete(
	ctx context.Context, systemInstruction, userContent string,
) (domain.CompletionResult, error) {
	if p.budget != nil {
		if err := p.budget.Check(ctx); err != nil {
			p.logger.Error("Token budget exceeded", zap.String("model", p.model), zap.Error(err))
			return domain.CompletionResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()

	result, err := p.inner.Complete(ctx, systemInstruction, userContent)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Completion request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.CompletionResult{}, fmt.Errorf("complete: %w", err)
	}

	if p.budget != nil {
		p.budget.Record(int64(result.TotalTokens))
	}
	domain.UsageFromContext(ctx).AddCompletionTokens(result.TotalTokens)

	p.logger.Debug("Completion request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
	)

	return result, nil
}
