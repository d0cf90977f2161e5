// Package budget persists token budget counters in the key-value store.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/headrag/internal/db"
)

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Retention maps a budget period name to the lifetime of its counter keys.
type Retention map[string]time.Duration

// Store keeps one counter per period key (INCRBY + EXPIRE NX, GET).
type Store struct {
	kv        store
	retention Retention
}

// New creates a budget store. Every period passed to Add needs a retention entry.
func New(kv store, retention Retention) *Store {
	return &Store{kv: kv, retention: retention}
}

// Add increments the counter under key by tokens.
// The key's TTL is set once, when the first increment creates it.
func (s *Store) Add(ctx context.Context, period, key string, tokens int64) error {
	ttl, ok := s.retention[period]
	if !ok || ttl <= 0 {
		return fmt.Errorf("budget: no retention for period %q", period)
	}
	if err := s.kv.IncrBy(ctx, key, tokens); err != nil {
		return fmt.Errorf("budget INCRBY %s: %w", key, err)
	}
	if err := s.kv.Expire(ctx, key, ttl, true); err != nil {
		return fmt.Errorf("budget EXPIRE %s: %w", key, err)
	}
	return nil
}

// Load returns the counter under key, 0 when nothing was spent in that period yet.
func (s *Store) Load(ctx context.Context, key string) (int64, error) {
	data, err := s.kv.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("budget GET %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("budget counter %s: %w", key, err)
	}
	return val, nil
}
