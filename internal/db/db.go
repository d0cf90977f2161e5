// Package db defines the key-value storage contract behind the embedding
// cache and the shared token budget.
package db

import (
	"context"
	"time"
)

// Blobs stores opaque values that expire, such as cached embedding vectors.
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Counters keeps integer counters, such as token budget usage per period.
type Counters interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store is what the composition root opens once and hands out by role.
type Store interface {
	Blobs
	Counters
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}
