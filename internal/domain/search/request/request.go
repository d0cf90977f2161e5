package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/headrag/internal/domain"
)

// MaxQueryLength is the maximum allowed query length in bytes.
const MaxQueryLength = 4096

// Limits bounds the number of ranked results a request may ask for.
type Limits struct {
	DefaultTopK int
	MaxTopK     int
}

// DefaultLimits returns the limits used when configuration leaves them unset.
func DefaultLimits() Limits {
	return Limits{DefaultTopK: 5, MaxTopK: 100}
}

// Request is a validated retrieval query.
type Request struct {
	query    string
	topK     int
	minScore float64
}

// New validates and normalizes retrieval parameters.
// topK=0 selects the default, topK above the maximum is clamped, negative topK is rejected.
func New(query string, topK int, minScore float64, lim Limits) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("query is required: %w", domain.ErrInvalidRequest)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars): %w", MaxQueryLength, domain.ErrInvalidRequest)
	}
	if topK < 0 {
		return Request{}, fmt.Errorf("top_k must not be negative, got %d: %w", topK, domain.ErrInvalidConfiguration)
	}
	if topK == 0 {
		topK = lim.DefaultTopK
	}
	if lim.MaxTopK > 0 && topK > lim.MaxTopK {
		topK = lim.MaxTopK
	}
	if minScore < 0 || minScore > 1 {
		return Request{}, fmt.Errorf("min_score must be between 0 and 1: %w", domain.ErrInvalidRequest)
	}

	return Request{query: query, topK: topK, minScore: minScore}, nil
}

// Query returns the trimmed query text.
func (r *Request) Query() string { return r.query }

// TopK returns the number of ranked entries to return.
func (r *Request) TopK() int { return r.topK }

// MinScore returns the minimum fused score; 0 disables the threshold.
func (r *Request) MinScore() float64 { return r.minScore }
