package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/headrag/internal/config"
	"github.com/kailas-cloud/headrag/internal/db"
	dbRedis "github.com/kailas-cloud/headrag/internal/db/redis"
	"github.com/kailas-cloud/headrag/internal/domain"
	"github.com/kailas-cloud/headrag/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/headrag/internal/logger"
	"github.com/kailas-cloud/headrag/internal/metrics"
	budgetrepo "github.com/kailas-cloud/headrag/internal/repository/budget"
	"github.com/kailas-cloud/headrag/internal/repository/embcache"
	"github.com/kailas-cloud/headrag/internal/source"
	chiTransport "github.com/kailas-cloud/headrag/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/headrag/internal/transport/openai"
	answeruc "github.com/kailas-cloud/headrag/internal/usecase/answer"
	evaluationuc "github.com/kailas-cloud/headrag/internal/usecase/evaluation"
	headeruc "github.com/kailas-cloud/headrag/internal/usecase/header"
	healthuc "github.com/kailas-cloud/headrag/internal/usecase/health"
	indexeruc "github.com/kailas-cloud/headrag/internal/usecase/indexer"
	llmuc "github.com/kailas-cloud/headrag/internal/usecase/llm"
	"github.com/kailas-cloud/headrag/internal/usecase/retry"
	searchuc "github.com/kailas-cloud/headrag/internal/usecase/search"
	"github.com/kailas-cloud/headrag/internal/version"
)

func main() {
	config.LoadDotEnv()

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}

	logger.Info("Starting headrag",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.String("mode", cfg.Mode),
		zap.String("document", cfg.Document.Path),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	// Register provider and pipeline metrics explicitly (no init())
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, logger)
	stop()
	_ = logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) int {
	// Optional key-value store: embedding cache and token budget persistence.
	var store db.Store
	if cfg.Cache.Enabled {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Error("Failed to create cache store", zap.Error(err))
			return 1
		}
		defer s.Close()

		if err := s.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Error("Cache not ready", zap.Error(err))
			return 1
		}
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))
		store = s
	}

	budget := buildBudget(ctx, cfg, store, logger)
	policy := retry.Policy{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: time.Duration(cfg.Retry.InitialIntervalMs) * time.Millisecond,
		MaxInterval:     time.Duration(cfg.Retry.MaxIntervalMs) * time.Millisecond,
	}

	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.EmbeddingModel,
		Dimensions: cfg.LLM.EmbeddingDimensions,
		Provider:   cfg.LLM.Provider,
		Logger:     logger,
	})
	embedder := buildEmbedder(cfg, baseEmbedder, policy, budget, store, logger)
	docEmbedder := domain.WithInstruction(embedder, cfg.LLM.DocumentInstruction)
	queryEmbedder := domain.WithInstruction(embedder, cfg.LLM.QueryInstruction)

	baseCompleter := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
		Config: openaiTransport.Config{
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
			Model:    cfg.LLM.CompletionModel,
			Provider: cfg.LLM.Provider,
			Logger:   logger,
		},
		MaxTokens: cfg.LLM.CompletionMaxTokens,
	})
	completer := buildCompleter(cfg, baseCompleter, policy, budget, logger)

	logger.Info("Collaborators created",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("embedding_model", cfg.LLM.EmbeddingModel),
		zap.String("completion_model", cfg.LLM.CompletionModel),
	)

	indexer, err := indexeruc.New(indexeruc.Config{
		WindowSize:  cfg.Chunking.WindowSize,
		Overlap:     cfg.Chunking.Overlap,
		Concurrency: cfg.Index.Concurrency,
	}, headeruc.New(completer), docEmbedder, logger)
	if err != nil {
		logger.Error("Invalid indexer configuration", zap.Error(err))
		return 1
	}

	limits := request.Limits{DefaultTopK: cfg.Search.DefaultTopK, MaxTopK: cfg.Search.MaxTopK}
	searchSvc := searchuc.New(indexer, queryEmbedder, logger)
	answerSvc := answeruc.New(searchSvc, completer, logger)
	evaluator := evaluationuc.NewEvaluator(completer, logger)
	runner := evaluationuc.NewRunner(evaluationuc.RunnerConfig{
		TopK:        cfg.Search.DefaultTopK,
		Limits:      limits,
		Concurrency: cfg.Search.EvaluationConcurrency,
	}, answerSvc, evaluator, logger)

	text, err := source.Load(cfg.Document.Path)
	if err != nil {
		logger.Error("Failed to load document", zap.String("path", cfg.Document.Path), zap.Error(err))
		return 1
	}

	if cfg.Mode == config.ModeEvaluate {
		return evaluate(ctx, cfg, indexer, runner, text, logger)
	}

	deps := healthuc.Deps{
		Index:      indexer,
		Embedding:  baseEmbedder,
		Completion: baseCompleter,
	}
	if store != nil {
		deps.Cache = store
	}

	server := chiTransport.NewServer(chiTransport.Services{
		Search:    searchSvc,
		Ask:       answerSvc,
		Evaluator: evaluator,
		Runner:    runner,
		Health:    healthuc.New(deps),
	}, limits, logger)

	// The index is built in the background; until it is published the
	// retrieval endpoints answer 503 index_not_ready.
	go func() {
		if _, err := indexer.Build(ctx, text); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Initial index build failed", zap.Error(err))
		}
	}()

	return serve(ctx, cfg, server.Handler(cfg.Auth.APIKeys), logger)
}

func evaluate(
	ctx context.Context,
	cfg config.Config,
	indexer *indexeruc.Service,
	runner *evaluationuc.Runner,
	text string,
	logger *zap.Logger,
) int {
	cases, err := source.LoadDataset(cfg.Dataset.Path)
	if err != nil {
		logger.Error("Failed to load dataset", zap.String("path", cfg.Dataset.Path), zap.Error(err))
		return 1
	}

	ctx, usage := domain.NewContextWithUsage(ctx)
	if _, err := indexer.Build(ctx, text); err != nil {
		return 1
	}

	report, err := runner.Run(ctx, cases)
	if err != nil {
		logger.Error("Evaluation aborted", zap.Error(err))
		return 1
	}

	for i, res := range report.Results {
		fields := []zap.Field{
			zap.Int("case", i),
			zap.String("question", res.Case.Question),
		}
		switch {
		case !res.Outcome.IsOk():
			fields = append(fields, zap.String("kind", string(res.Outcome.Kind())), zap.Error(res.Outcome.Err()))
			logger.Warn("Case failed", fields...)
		default:
			rec := res.Outcome.Value()
			if score, ok := rec.Score(); ok {
				fields = append(fields, zap.String("score", score.String()))
			} else {
				fields = append(fields, zap.String("raw_output", rec.RawOutput()))
			}
			logger.Info("Case evaluated", append(fields, zap.String("status", string(rec.Status())))...)
		}
	}

	embeddingTokens, completionTokens, _ := usage.Snapshot()
	logger.Info("Evaluation report",
		zap.String("run_id", report.RunID),
		zap.Int("cases", len(report.Results)),
		zap.Int("scored", report.Scored),
		zap.Int("unscored", report.Unscored),
		zap.Int("failed", report.Failed),
		zap.String("mean_score", meanScore(report)),
		zap.Int("embedding_tokens", embeddingTokens),
		zap.Int("completion_tokens", completionTokens),
		zap.Duration("duration", report.Duration),
	)

	if report.Failed > 0 {
		return 2
	}
	return 0
}

func meanScore(r *evaluationuc.Report) string {
	if !r.HasMean() {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", r.MeanScore)
}

func serve(ctx context.Context, cfg config.Config, handler http.Handler, logger *zap.Logger) int {
	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("HTTP server error", zap.Error(err))
		return 1
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return 1
	}

	logger.Info("Server stopped gracefully")
	return 0
}

// buildBudget returns nil when no limit is configured.
func buildBudget(ctx context.Context, cfg config.Config, store db.Store, logger *zap.Logger) llmuc.TokenBudget {
	if cfg.Budget.DailyTokens == 0 && cfg.Budget.MonthlyTokens == 0 {
		return nil
	}

	budget := llmuc.NewBudget(llmuc.BudgetConfig{
		Scope:        cfg.LLM.Provider,
		DailyLimit:   cfg.Budget.DailyTokens,
		MonthlyLimit: cfg.Budget.MonthlyTokens,
		Action:       llmuc.BudgetAction(cfg.Budget.Action),
	}, logger)
	if store != nil {
		budget.WithStore(ctx, budgetrepo.New(store, budgetrepo.Retention{
			llmuc.PeriodDaily:   48 * time.Hour,
			llmuc.PeriodMonthly: 62 * 24 * time.Hour,
		}))
	}
	return budget
}

// buildEmbedder assembles the decorator chain: OpenAI -> Retry -> Instrumented -> Cached.
// Cache hits skip the budget and provider metrics.
func buildEmbedder(
	cfg config.Config,
	base domain.Embedder,
	policy retry.Policy,
	budget llmuc.TokenBudget,
	store db.Store,
	logger *zap.Logger,
) domain.Embedder {
	var embedder domain.Embedder = retry.NewEmbedder(base, policy, logger)
	embedder = llmuc.NewInstrumentedEmbedder(
		embedder, cfg.LLM.Provider, cfg.LLM.EmbeddingModel, budget, logger,
	)

	if store != nil {
		embedder = embcache.New(embedder, store, embcache.Config{
			Model:      cfg.LLM.EmbeddingModel,
			Dimensions: cfg.LLM.EmbeddingDimensions,
			TTL:        time.Duration(cfg.Cache.TTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}
	return embedder
}

// buildCompleter assembles the decorator chain: OpenAI -> Retry -> Instrumented.
func buildCompleter(
	cfg config.Config,
	base domain.Completer,
	policy retry.Policy,
	budget llmuc.TokenBudget,
	logger *zap.Logger,
) domain.Completer {
	var completer domain.Completer = retry.NewCompleter(base, policy, logger)
	return llmuc.NewInstrumentedCompleter(
		completer, cfg.LLM.Provider, cfg.LLM.CompletionModel, budget, logger,
	)
}
