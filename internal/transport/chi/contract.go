package chi

import (
	"context"

	domeval "github.com/kailas-cloud/headrag/internal/domain/evaluation"
	"github.com/kailas-cloud/headrag/internal/domain/search/request"
	"github.com/kailas-cloud/headrag/internal/domain/search/result"
	"github.com/kailas-cloud/headrag/internal/usecase/answer"
	"github.com/kailas-cloud/headrag/internal/usecase/evaluation"
	healthuc "github.com/kailas-cloud/headrag/internal/usecase/health"
)

// Searcher ranks indexed chunks for a query.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}

// Asker answers a query from retrieved chunks.
type Asker interface {
	Ask(ctx context.Context, req *request.Request) (answer.Answer, error)
}

// Evaluator scores a generated answer against a reference.
type Evaluator interface {
	Evaluate(ctx context.Context, query, generated, reference string) (domeval.Record, error)
}

// CaseRunner runs one reference case through search, answer and evaluation.
type CaseRunner interface {
	RunOne(ctx context.Context, c domeval.Case) evaluation.CaseResult
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
