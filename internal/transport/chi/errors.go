package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/headrag/internal/domain"
	logpkg "github.com/kailas-cloud/headrag/internal/logger"
)

// ErrorCode is the machine-readable error code in API responses.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeIndexNotReady      ErrorCode = "index_not_ready"
	CodeDegenerateQuery    ErrorCode = "degenerate_query"
	CodeDimensionMismatch  ErrorCode = "dimension_mismatch"
	CodeRateLimited        ErrorCode = "rate_limited"
	CodeBudgetExceeded     ErrorCode = "token_budget_exceeded"
	CodeEmbeddingProvider  ErrorCode = "embedding_provider_error"
	CodeCompletionProvider ErrorCode = "completion_provider_error"
	CodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidConfiguration, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrIndexNotReady, http.StatusServiceUnavailable, CodeIndexNotReady),
		sentinelHandler(domain.ErrDegenerateVector, http.StatusUnprocessableEntity, CodeDegenerateQuery),
		sentinelHandler(domain.ErrEmbeddingDimensionMismatch,
			http.StatusUnprocessableEntity, CodeDimensionMismatch),
		sentinelHandler(domain.ErrTokenBudgetExceeded, http.StatusTooManyRequests, CodeBudgetExceeded),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider),
		sentinelHandler(domain.ErrCompletionProviderError, http.StatusBadGateway, CodeCompletionProvider),
	}
}

// safeSentinels are the errors whose message may reach the client, most specific first.
var safeSentinels = []error{
	domain.ErrInvalidRequest,
	domain.ErrInvalidConfiguration,
	domain.ErrIndexNotReady,
	domain.ErrDegenerateVector,
	domain.ErrEmbeddingDimensionMismatch,
	domain.ErrTokenBudgetExceeded,
	domain.ErrRateLimited,
	domain.ErrEmbeddingProviderError,
	domain.ErrCompletionProviderError,
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range safeSentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContext(r.Context(), s.logger)
	logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
