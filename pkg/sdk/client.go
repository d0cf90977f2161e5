package headrag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/headrag/internal/domain"
	domeval "github.com/kailas-cloud/headrag/internal/domain/evaluation"
	"github.com/kailas-cloud/headrag/internal/domain/search/request"
	"github.com/kailas-cloud/headrag/internal/source"
	answeruc "github.com/kailas-cloud/headrag/internal/usecase/answer"
	evaluationuc "github.com/kailas-cloud/headrag/internal/usecase/evaluation"
	headeruc "github.com/kailas-cloud/headrag/internal/usecase/header"
	indexeruc "github.com/kailas-cloud/headrag/internal/usecase/indexer"
	"github.com/kailas-cloud/headrag/internal/usecase/retry"
	searchuc "github.com/kailas-cloud/headrag/internal/usecase/search"
)

const (
	defaultWindowSize = 1000
	defaultOverlap    = 200
)

// Client is the headrag SDK entry point. Safe for concurrent use;
// searches run against the index published by the latest successful Index call.
type Client struct {
	indexer   *indexeruc.Service
	search    *searchuc.Service
	answer    *answeruc.Service
	evaluator *evaluationuc.Evaluator
	runner    *evaluationuc.Runner
	limits    request.Limits
	obs       *observer
}

// New creates a headrag Client. WithEmbedder and WithCompleter are required.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		windowSize: defaultWindowSize,
		overlap:    defaultOverlap,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.embedder == nil {
		return nil, errors.New("headrag: embedder required (use WithEmbedder)")
	}
	if cfg.completer == nil {
		return nil, errors.New("headrag: completer required (use WithCompleter)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return wireClient(cfg, obs)
}

func wireClient(cfg *clientConfig, obs *observer) (*Client, error) {
	logger := zap.NewNop()

	policy := retry.DefaultPolicy()
	if cfg.retries > 0 {
		policy = retry.Policy{
			MaxAttempts:     cfg.retries,
			InitialInterval: cfg.retryInitial,
			MaxInterval:     cfg.retryMax,
		}
	}

	var embedder domain.Embedder = retry.NewEmbedder(&embedderAdapter{inner: cfg.embedder}, policy, logger)
	var completer domain.Completer = retry.NewCompleter(&completerAdapter{inner: cfg.completer}, policy, logger)

	indexer, err := indexeruc.New(indexeruc.Config{
		WindowSize:  cfg.windowSize,
		Overlap:     cfg.overlap,
		Concurrency: cfg.concurrency,
	}, headeruc.New(completer), embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("headrag: %w", err)
	}

	limits := request.DefaultLimits()
	if cfg.defaultTopK > 0 {
		limits.DefaultTopK = cfg.defaultTopK
	}
	if cfg.maxTopK > 0 {
		limits.MaxTopK = cfg.maxTopK
	}

	searchSvc := searchuc.New(indexer, embedder, logger)
	answerSvc := answeruc.New(searchSvc, completer, logger)
	evaluator := evaluationuc.NewEvaluator(completer, logger)
	runner := evaluationuc.NewRunner(evaluationuc.RunnerConfig{
		Limits:      limits,
		Concurrency: cfg.evalConcurrency,
	}, answerSvc, evaluator, logger)

	return &Client{
		indexer:   indexer,
		search:    searchSvc,
		answer:    answerSvc,
		evaluator: evaluator,
		runner:    runner,
		limits:    limits,
		obs:       obs,
	}, nil
}

// Index chunks, titles and embeds text, replacing the current index on success.
// On failure the previous index stays in place.
func (c *Client) Index(ctx context.Context, text string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("index", start, err) }()

	idx, err := c.indexer.Build(ctx, text)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	c.obs.indexed(idx.Len())
	return nil
}

// IndexFile loads a .pdf or UTF-8 text file and indexes its content.
func (c *Client) IndexFile(ctx context.Context, path string) error {
	text, err := source.Load(path)
	if err != nil {
		return fmt.Errorf("index file: %w", err)
	}
	return c.Index(ctx, text)
}

// Len returns the number of indexed chunks, 0 before the first Index call.
func (c *Client) Len() int {
	if idx := c.indexer.Current(); idx != nil {
		return idx.Len()
	}
	return 0
}

// Search ranks the indexed chunks against query.
func (c *Client) Search(ctx context.Context, query string, opts *SearchOptions) (_ []SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	req, err := c.request(query, opts)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	results, err := c.search.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromResults(results), nil
}

// Ask retrieves the top chunks for query and generates an answer grounded on them.
func (c *Client) Ask(ctx context.Context, query string, opts *SearchOptions) (_ Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	req, err := c.request(query, opts)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	ans, err := c.answer.Ask(ctx, &req)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	return Answer{Text: ans.Text, Sources: fromResults(ans.Sources)}, nil
}

// Evaluate scores a generated answer against a reference answer.
// An evaluator reply outside the rubric yields Scored=false, not an error.
func (c *Client) Evaluate(ctx context.Context, query, generated, reference string) (_ Evaluation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("evaluate", start, err) }()

	rec, err := c.evaluator.Evaluate(ctx, query, generated, reference)
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluate: %w", err)
	}
	return fromRecord(rec), nil
}

// RunEvaluation answers and scores every case against the current index.
// Per-case failures are reported in the result; only cancellation aborts the run.
func (c *Client) RunEvaluation(ctx context.Context, cases []Case) (_ *Report, err error) {
	start := time.Now()
	defer func() { c.obs.observe("run_evaluation", start, err) }()

	in := make([]domeval.Case, len(cases))
	for i, cs := range cases {
		in[i] = domeval.Case{Question: cs.Question, IdealAnswer: cs.IdealAnswer}
	}
	report, err := c.runner.Run(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("run evaluation: %w", err)
	}
	return fromReport(report), nil
}

func (c *Client) request(query string, opts *SearchOptions) (request.Request, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	req, err := request.New(query, opts.TopK, opts.MinScore, c.limits)
	if err != nil {
		return request.Request{}, fmt.Errorf("build request: %w", err)
	}
	return req, nil
}
