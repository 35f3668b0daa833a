package domain

import (
	"context"
	"time"
)

// Repository defines the interface for snapshot and dimension-config
// persistence. All methods are keyed by business domain so the four
// boards stay isolated.
type Repository interface {
	// Snapshot operations
	SaveSnapshot(ctx context.Context, d BusinessDomain, snap *Snapshot) error
	GetSnapshot(ctx context.Context, d BusinessDomain, snapshotID string) (*Snapshot, error)
	LatestSnapshot(ctx context.Context, d BusinessDomain) (*Snapshot, error)
	ListSnapshots(ctx context.Context, d BusinessDomain, limit int) ([]*SnapshotMeta, error)

	// Custom dimension configuration operations
	SaveDimensionConfig(ctx context.Context, d BusinessDomain, cfg *DimensionConfig) error
	GetDimensionConfig(ctx context.Context, d BusinessDomain, dimID string) (*DimensionConfig, error)
	ListDimensionConfigs(ctx context.Context, d BusinessDomain) ([]*DimensionConfig, error)
	DeleteDimensionConfig(ctx context.Context, d BusinessDomain, dimID string) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
