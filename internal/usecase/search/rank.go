package search

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/headrag/internal/domain"
	"github.com/kailas-cloud/headrag/internal/domain/search/result"
)

// Rank orders scored entries by descending score and keeps the first k.
// Ties keep their input (chunk) order. k larger than the input returns everything.
// The input slice is not modified.
func Rank(scored []result.Result, k int) ([]result.Result, error) {
	if k < 0 {
		return nil, fmt.Errorf("k must not be negative, got %d: %w", k, domain.ErrInvalidConfiguration)
	}

	ranked := make([]result.Result, len(scored))
	copy(ranked, scored)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked, nil
}
