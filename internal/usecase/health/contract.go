package health

import (
	"context"

	"github.com/kailas-cloud/headrag/internal/domain/index"
)

// CachePinger checks cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks embedding or completion provider availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// IndexProvider exposes the currently published index.
type IndexProvider interface {
	Current() *index.Index
}
