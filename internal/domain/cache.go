package domain

import (
	"context"
	"time"
)

// Cache defines the interface for caching aggregate payloads between
// refresh cycles. Supports two-phase caching: local LRU plus Redis.
// All methods are keyed by business domain for board isolation.
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, d BusinessDomain, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, d BusinessDomain, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, d BusinessDomain, key string) error

	// GetReport retrieves a cached KPI report.
	GetReport(ctx context.Context, d BusinessDomain, key string) (*KPIReport, error)

	// SetReport caches a KPI report keyed by snapshot fingerprint and
	// query shape, so re-serving the same snapshot skips aggregation.
	SetReport(ctx context.Context, d BusinessDomain, key string, report *KPIReport, ttl time.Duration) error

	// IncrementCounter atomically increments a counter and returns the
	// new value. Used for per-domain refresh bookkeeping.
	IncrementCounter(ctx context.Context, d BusinessDomain, key string, window time.Duration) (int64, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis"
	Type string

	// Local LRU cache settings
	LocalMaxSize int
	LocalTTL     time.Duration

	// Redis settings
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Two-phase settings
	EnableTwoPhase bool // If true, check local first, then Redis
}
