package domain

import (
	"context"
	"time"
)

// ReportProducer computes a report on a cache miss.
type ReportProducer func(ctx context.Context) (*Report, error)

// ResultCache memoizes reports by key for a fixed TTL. Producer errors are
// returned to the caller and never cached. The boolean reports a cache hit.
type ResultCache interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, produce ReportProducer) (*Report, bool, error)
	Invalidate(ctx context.Context, key string) error
}
