package search

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/kailas-cloud/headrag/internal/domain"
	"github.com/kailas-cloud/headrag/internal/domain/search/request"
	"github.com/kailas-cloud/headrag/internal/domain/search/result"
	"github.com/kailas-cloud/headrag/internal/domain/vector"
	"github.com/kailas-cloud/headrag/internal/metrics"
)

// Service ranks the entries of the published index against a query.
type Service struct {
	indexes IndexProvider
	embed   Embedder
	logger  *zap.Logger
}

// New creates a search service.
func New(indexes IndexProvider, embed Embedder, logger *zap.Logger) *Service {
	return &Service{indexes: indexes, embed: embed, logger: logger}
}

// Search embeds the query once, scores every entry and returns the top-k.
// Entries with a degenerate vector are excluded; a degenerate query fails the call.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	idx := s.indexes.Current()
	if idx == nil {
		return nil, domain.ErrIndexNotReady
	}

	embResult, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	query := embResult.Embedding

	if n := vector.Norm(query); n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, domain.NewQueryError(req.Query(), domain.ErrDegenerateVector)
	}
	if idx.Len() > 0 && len(query) != idx.Dimensions() {
		return nil, domain.NewQueryError(req.Query(), fmt.Errorf(
			"query=%d index=%d: %w", len(query), idx.Dimensions(), domain.ErrEmbeddingDimensionMismatch,
		))
	}

	entries := idx.Entries()
	scored := make([]result.Result, 0, len(entries))
	excluded := 0

	for _, e := range entries {
		score, err := Score(query, e)
		if errors.Is(err, domain.ErrDegenerateVector) {
			excluded++
			metrics.SearchExcludedTotal.Inc()
			s.logger.Warn("Entry excluded from ranking",
				zap.Int("offset", e.Chunk().StartOffset()),
				zap.Error(err),
			)
			continue
		}
		if err != nil {
			return nil, domain.NewQueryError(req.Query(), domain.NewChunkError(e.Chunk().StartOffset(), err))
		}
		if req.MinScore() > 0 && score < req.MinScore() {
			continue
		}
		scored = append(scored, result.New(e, score))
	}

	ranked, err := Rank(scored, req.TopK())
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Search completed",
		zap.Int("candidates", len(entries)),
		zap.Int("excluded", excluded),
		zap.Int("returned", len(ranked)),
	)
	return ranked, nil
}
