package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domeval "github.com/kailas-cloud/headrag/internal/domain/evaluation"
	"github.com/kailas-cloud/headrag/internal/domain/outcome"
	"github.com/kailas-cloud/headrag/internal/domain/search/request"
)

// DefaultConcurrency bounds in-flight cases when configuration leaves it unset.
const DefaultConcurrency = 4

// CaseResult pairs a dataset case with its evaluation outcome.
type CaseResult struct {
	Case    domeval.Case
	Answer  string
	Outcome outcome.Outcome[domeval.Record]
}

// Report summarizes one evaluation run.
type Report struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Results   []CaseResult
	Scored    int
	Unscored  int
	Failed    int
	MeanScore float64
}

// HasMean reports whether at least one case was scored.
func (r *Report) HasMean() bool { return r.Scored > 0 }

// RunnerConfig holds retrieval and parallelism settings for a run.
type RunnerConfig struct {
	TopK        int
	Limits      request.Limits
	Concurrency int
}

// Runner drives each dataset case through retrieve, answer and evaluate.
type Runner struct {
	cfg       RunnerConfig
	asker     Asker
	evaluator *Evaluator
	logger    *zap.Logger
}

// NewRunner creates a dataset runner.
func NewRunner(cfg RunnerConfig, asker Asker, evaluator *Evaluator, logger *zap.Logger) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Runner{cfg: cfg, asker: asker, evaluator: evaluator, logger: logger}
}

// Run evaluates every case. Per-case failures are collected in the report;
// only cancellation of ctx aborts the run.
func (r *Runner) Run(ctx context.Context, cases []domeval.Case) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Results:   make([]CaseResult, len(cases)),
	}
	logger := r.logger.With(zap.String("run_id", report.RunID))
	logger.Info("Evaluation run started", zap.Int("cases", len(cases)))

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)

	for i, c := range cases {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			text, o := r.runCase(ctx, c)
			report.Results[i] = CaseResult{Case: c, Answer: text, Outcome: o}
			if !o.IsOk() {
				logger.Warn("Evaluation case failed",
					zap.Int("case", i),
					zap.String("kind", string(o.Kind())),
					zap.Error(o.Err()),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluation run %s canceled: %w", report.RunID, err)
	}

	report.Duration = time.Since(report.StartedAt)
	report.summarize()

	logger.Info("Evaluation run finished",
		zap.Int("scored", report.Scored),
		zap.Int("unscored", report.Unscored),
		zap.Int("failed", report.Failed),
		zap.Float64("mean_score", report.MeanScore),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

// RunOne evaluates a single case.
func (r *Runner) RunOne(ctx context.Context, c domeval.Case) CaseResult {
	text, o := r.runCase(ctx, c)
	return CaseResult{Case: c, Answer: text, Outcome: o}
}

func (r *Runner) runCase(ctx context.Context, c domeval.Case) (string, outcome.Outcome[domeval.Record]) {
	req, err := request.New(c.Question, r.cfg.TopK, 0, r.cfg.Limits)
	if err != nil {
		return "", outcome.Err[domeval.Record](err)
	}

	ans, err := r.asker.Ask(ctx, &req)
	if err != nil {
		return "", outcome.Err[domeval.Record](err)
	}

	rec, err := r.evaluator.Evaluate(ctx, req.Query(), ans.Text, c.IdealAnswer)
	if err != nil {
		return ans.Text, outcome.Err[domeval.Record](err)
	}
	return ans.Text, outcome.Ok(rec)
}

func (r *Report) summarize() {
	var sum float64
	for _, res := range r.Results {
		if !res.Outcome.IsOk() {
			r.Failed++
			continue
		}
		score, ok := res.Outcome.Value().Score()
		if !ok {
			r.Unscored++
			continue
		}
		r.Scored++
		sum += float64(score)
	}
	if r.Scored > 0 {
		r.MeanScore = sum / float64(r.Scored)
	}
}
