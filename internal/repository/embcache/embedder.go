// Package embcache memoizes embedding calls in the key-value store so that
// rebuilding the index for an unchanged document costs no provider tokens.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/headrag/internal/db"
	"github.com/kailas-cloud/headrag/internal/domain"
)

// Cache lookup outcomes, used as the "result" metric label.
const (
	resultHit     = "hit"
	resultMiss    = "miss"
	resultInvalid = "invalid"
)

// Config scopes cached vectors to one model and dimensionality.
type Config struct {
	Model      string
	Dimensions int
	TTL        time.Duration
}

// CachedEmbedder is an Embedder decorator backed by db.Blobs.
// Concurrent misses for the same text share a single inner call.
type CachedEmbedder struct {
	inner     domain.Embedder
	blobs     db.Blobs
	cfg       Config
	keyPrefix string
	flight    singleflight.Group
	lookups   *prometheus.CounterVec
	logger    *zap.Logger
}

// New wraps inner. lookups may be nil; otherwise it needs a "result" label.
func New(
	inner domain.Embedder,
	blobs db.Blobs,
	cfg Config,
	lookups *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	return &CachedEmbedder{
		inner:     inner,
		blobs:     blobs,
		cfg:       cfg,
		keyPrefix: domain.KeyPrefix + "emb_cache:" + cfg.Model + ":" + strconv.Itoa(cfg.Dimensions) + ":",
		lookups:   lookups,
		logger:    logger,
	}
}

// Embed serves the vector from the store when present. Hits report zero tokens.
// Store failures degrade to a miss.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if vec, ok := c.lookup(ctx, key); ok {
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	v, err, _ := c.flight.Do(key, func() (any, error) {
		res, err := c.inner.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		c.remember(ctx, key, res.Embedding)
		return res, nil
	})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	return v.(domain.EmbeddingResult), nil
}

func (c *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.keyPrefix + hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.blobs.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Embedding cache read failed", zap.String("key", key), zap.Error(err))
		}
		c.count(resultMiss)
		return nil, false
	}

	vec, err := decodeVector(data)
	if err == nil && c.cfg.Dimensions > 0 && len(vec) != c.cfg.Dimensions {
		err = fmt.Errorf("%w: %d dimensions, want %d", errCorrupt, len(vec), c.cfg.Dimensions)
	}
	if err != nil {
		c.logger.Warn("Ignoring cached embedding", zap.String("key", key), zap.Error(err))
		c.count(resultInvalid)
		return nil, false
	}

	c.count(resultHit)
	return vec, true
}

func (c *CachedEmbedder) remember(ctx context.Context, key string, vec []float32) {
	if err := c.blobs.SetWithTTL(ctx, key, encodeVector(vec), c.cfg.TTL); err != nil {
		c.logger.Warn("Embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedEmbedder) count(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}
