// Package vector holds the similarity math used for retrieval.
package vector

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/headrag/internal/domain"
)

// Cosine returns dot(a, b) / (|a| * |b|), accumulated in float64.
// Returns domain.ErrDegenerateVector if either operand has zero norm
// and domain.ErrEmbeddingDimensionMismatch if lengths differ.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine of %d-dim and %d-dim vectors: %w",
			len(a), len(b), domain.ErrEmbeddingDimensionMismatch)
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("zero-norm operand: %w", domain.ErrDegenerateVector)
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0, fmt.Errorf("non-finite similarity: %w", domain.ErrDegenerateVector)
	}
	return sim, nil
}

// Norm returns the Euclidean norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
