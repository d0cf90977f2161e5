package search

import (
	"fmt"

	"github.com/kailas-cloud/headrag/internal/domain/index"
	"github.com/kailas-cloud/headrag/internal/domain/vector"
)

// Score fuses body and header similarity: (cos(q, text) + cos(q, header)) / 2.
// Both components carry equal weight.
func Score(query []float32, entry index.Entry) (float64, error) {
	textSim, err := vector.Cosine(query, entry.TextEmbedding())
	if err != nil {
		return 0, fmt.Errorf("text similarity: %w", err)
	}
	headerSim, err := vector.Cosine(query, entry.HeaderEmbedding())
	if err != nil {
		return 0, fmt.Errorf("header similarity: %w", err)
	}
	return (textSim + headerSim) / 2, nil
}
