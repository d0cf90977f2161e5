package chi

import (
	"encoding/json"
	"net/http"
	"strconv"

	gochi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/headrag/internal/domain"
	domeval "github.com/kailas-cloud/headrag/internal/domain/evaluation"
	"github.com/kailas-cloud/headrag/internal/domain/outcome"
	"github.com/kailas-cloud/headrag/internal/domain/search/request"
	"github.com/kailas-cloud/headrag/internal/metrics"
	"github.com/kailas-cloud/headrag/internal/usecase/evaluation"
	healthuc "github.com/kailas-cloud/headrag/internal/usecase/health"
)

// maxBodyBytes caps request bodies; questions and answers are short.
const maxBodyBytes = 1 << 20

// Services groups the use cases the API exposes.
type Services struct {
	Search    Searcher
	Ask       Asker
	Evaluator Evaluator
	Runner    CaseRunner
	Health    HealthChecker
}

// Server serves the retrieval API.
type Server struct {
	svc           Services
	limits        request.Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, limits request.Limits, logger *zap.Logger) *Server {
	return &Server{
		svc:           svc,
		limits:        limits,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Handler builds the chi router with the full middleware stack.
func (s *Server) Handler(apiKeys []string) http.Handler {
	r := gochi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(middleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r gochi.Router) {
		r.Post("/search", s.Search)
		r.Post("/ask", s.Ask)
		r.Post("/evaluate", s.Evaluate)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.svc.Search.Search(ctx, &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := chunkItems(results)
	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{Items: items, Total: len(items)})
}

// Ask handles POST /v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	ans, err := s.svc.Ask.Ask(ctx, &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, AskResponse{Answer: ans.Text, Sources: chunkItems(ans.Sources)})
}

// Evaluate handles POST /v1/evaluate.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	var body EvaluateRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Question == "" || body.IdealAnswer == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "question and ideal_answer are required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	c := domeval.Case{Question: body.Question, IdealAnswer: body.IdealAnswer}

	var res evaluation.CaseResult
	if body.GeneratedAnswer != "" {
		rec, err := s.svc.Evaluator.Evaluate(ctx, c.Question, body.GeneratedAnswer, c.IdealAnswer)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		res = evaluation.CaseResult{Case: c, Answer: body.GeneratedAnswer, Outcome: outcome.Ok(rec)}
	} else {
		res = s.svc.Runner.RunOne(ctx, c)
		if err := res.Outcome.Err(); err != nil {
			s.handleDomainError(w, r, err)
			return
		}
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, evaluateResponse(res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse(report))
}

func (s *Server) decodeSearch(w http.ResponseWriter, r *http.Request) (request.Request, bool) {
	var body SearchRequest
	if !decodeBody(w, r, &body) {
		return request.Request{}, false
	}

	topK := 0
	if body.TopK != nil {
		if *body.TopK <= 0 {
			writeError(w, http.StatusBadRequest, CodeValidationFailed,
				"top_k must be between 1 and "+strconv.Itoa(s.limits.MaxTopK))
			return request.Request{}, false
		}
		topK = *body.TopK
	}
	minScore := 0.0
	if body.MinScore != nil {
		minScore = *body.MinScore
	}

	req, err := request.New(body.Query, topK, minScore, s.limits)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return request.Request{}, false
	}
	return req, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.Usage) {
	embedding, completion, used := usage.Snapshot()
	if !used {
		return
	}
	w.Header().Set("X-Embedding-Tokens", strconv.Itoa(embedding))
	w.Header().Set("X-Completion-Tokens", strconv.Itoa(completion))
}
