package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/headrag/internal/domain"
)

// parseAPIError extracts a human-readable error from the API response.
// Every error wraps sentinel (the embedding or completion provider error) for 502 mapping;
// 429 additionally wraps domain.ErrRateLimited.
func parseAPIError(err, sentinel error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return &domain.ProviderError{
			StatusCode: reqErr.HTTPStatusCode,
			Detail:     detail,
			Err:        classify(reqErr.HTTPStatusCode, sentinel),
		}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ProviderError{
			StatusCode: apiErr.HTTPStatusCode,
			Detail:     apiErr.Message,
			Err:        classify(apiErr.HTTPStatusCode, sentinel),
		}
	}

	return &domain.ProviderError{Err: fmt.Errorf("%w: %w", sentinel, err)}
}

func classify(status int, sentinel error) error {
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, sentinel)
	}
	return sentinel
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}

// errorType is the metrics label for a failure.
func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	default:
		var pe *domain.ProviderError
		if errors.As(err, &pe) && pe.StatusCode == 0 {
			return "transport_error"
		}
		return "api_error"
	}
}
