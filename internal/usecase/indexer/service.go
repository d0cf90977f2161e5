// Package indexer builds the in-memory dual-embedding index of one document.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/headrag/internal/domain"
	"github.com/kailas-cloud/headrag/internal/domain/chunk"
	"github.com/kailas-cloud/headrag/internal/domain/index"
	"github.com/kailas-cloud/headrag/internal/domain/outcome"
	"github.com/kailas-cloud/headrag/internal/metrics"
)

// DefaultConcurrency bounds in-flight chunks when configuration leaves it unset.
const DefaultConcurrency = 8

// Config holds chunking and parallelism settings.
type Config struct {
	WindowSize  int
	Overlap     int
	Concurrency int
}

// Service chunks a document, synthesizes headers and embeds every chunk twice.
// The last successfully built index is published for readers.
type Service struct {
	cfg     Config
	headers HeaderSynthesizer
	embed   Embedder
	current atomic.Pointer[index.Index]
	logger  *zap.Logger
}

// New creates an indexer. Chunking parameters are validated up front.
func New(cfg Config, headers HeaderSynthesizer, embed Embedder, logger *zap.Logger) (*Service, error) {
	if err := chunk.Validate(cfg.WindowSize, cfg.Overlap); err != nil {
		return nil, err
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Service{cfg: cfg, headers: headers, embed: embed, logger: logger}, nil
}

// Current returns the published index, nil before the first successful build.
func (s *Service) Current() *index.Index {
	return s.current.Load()
}

// Build indexes text and publishes the result.
// The first failing chunk aborts the build; a canceled ctx discards all partial work.
func (s *Service) Build(ctx context.Context, text string) (*index.Index, error) {
	start := time.Now()

	idx, err := s.build(ctx, text)

	duration := time.Since(start)
	metrics.IndexBuildDuration.Observe(duration.Seconds())

	if err != nil {
		status := "error"
		if outcome.KindOf(err) == outcome.KindCanceled {
			status = "canceled"
		}
		metrics.IndexBuildsTotal.WithLabelValues(status).Inc()
		s.logger.Error("Index build failed", zap.Duration("duration", duration), zap.Error(err))
		return nil, err
	}

	metrics.IndexBuildsTotal.WithLabelValues("success").Inc()
	metrics.IndexEntries.Set(float64(idx.Len()))
	s.current.Store(idx)

	s.logger.Info("Index built",
		zap.Int("entries", idx.Len()),
		zap.Int("dimensions", idx.Dimensions()),
		zap.Duration("duration", duration),
	)
	return idx, nil
}

func (s *Service) build(ctx context.Context, text string) (*index.Index, error) {
	chunks, err := chunk.Split(text, s.cfg.WindowSize, s.cfg.Overlap)
	if err != nil {
		return nil, fmt.Errorf("split document: %w", err)
	}

	s.logger.Info("Document chunked",
		zap.Int("chunks", len(chunks)),
		zap.Int("window_size", s.cfg.WindowSize),
		zap.Int("overlap", s.cfg.Overlap),
	)

	results := make([]outcome.Outcome[index.Entry], len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i, c := range chunks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			entry, err := s.buildEntry(gctx, c)
			if err != nil {
				results[i] = outcome.Err[index.Entry](err)
				return err
			}
			results[i] = outcome.Ok(entry)
			return nil
		})
	}

	waitErr := g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("index build canceled: %w", err)
	}
	if waitErr != nil {
		return nil, fmt.Errorf("%s: %w", summarize(results), firstFailure(results, waitErr))
	}

	entries := make([]index.Entry, len(results))
	for i, r := range results {
		entries[i] = r.Value()
	}

	idx, err := index.New(entries)
	if err != nil {
		return nil, fmt.Errorf("assemble index: %w", err)
	}
	return idx, nil
}

// buildEntry synthesizes the header and embeds body and header of one chunk.
func (s *Service) buildEntry(ctx context.Context, c chunk.Chunk) (index.Entry, error) {
	if err := ctx.Err(); err != nil {
		return index.Entry{}, err
	}

	header, err := s.headers.Synthesize(ctx, c.Text())
	if err != nil {
		return index.Entry{}, domain.NewChunkError(c.StartOffset(), err)
	}
	c = c.WithHeader(header)

	textEmb, err := s.embed.Embed(ctx, c.Text())
	if err != nil {
		return index.Entry{}, domain.NewChunkError(c.StartOffset(), fmt.Errorf("embed text: %w", err))
	}

	headerEmb, err := s.embed.Embed(ctx, header)
	if err != nil {
		return index.Entry{}, domain.NewChunkError(c.StartOffset(), fmt.Errorf("embed header: %w", err))
	}

	if len(textEmb.Embedding) != len(headerEmb.Embedding) {
		return index.Entry{}, domain.NewChunkError(c.StartOffset(), fmt.Errorf(
			"text=%d header=%d: %w",
			len(textEmb.Embedding), len(headerEmb.Embedding), domain.ErrEmbeddingDimensionMismatch,
		))
	}

	return index.NewEntry(c, textEmb.Embedding, headerEmb.Embedding), nil
}

// firstFailure returns the lowest-offset non-cancellation failure, falling back to fallback.
// Chunks canceled after the first error are not the cause of the abort.
func firstFailure(results []outcome.Outcome[index.Entry], fallback error) error {
	for _, r := range results {
		if err := r.Err(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return fallback
}

// summarize counts failures by kind for the build error message.
func summarize(results []outcome.Outcome[index.Entry]) string {
	failed := 0
	byKind := map[outcome.Kind]int{}
	for _, r := range results {
		if r.Err() == nil {
			continue
		}
		failed++
		byKind[r.Kind()]++
	}
	if failed == 0 {
		return "index build aborted"
	}
	return fmt.Sprintf("index build aborted (%d of %d chunks failed: %v)", failed, len(results), byKind)
}
