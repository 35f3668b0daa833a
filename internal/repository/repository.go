// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Gautam1401/config-operations-hub/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveSnapshot stores a classified snapshot with its full record
// payload.
func (r *SQLRepository) SaveSnapshot(ctx context.Context, d domain.BusinessDomain, snap *domain.Snapshot) error {
	if d == "" {
		return fmt.Errorf("%w: business domain is required", ErrInvalidInput)
	}
	if snap == nil || snap.ID == "" {
		return fmt.Errorf("%w: snapshot with id is required", ErrInvalidInput)
	}

	records, err := json.Marshal(snap.Records)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot records: %w", err)
	}

	query := `
		INSERT INTO snapshots (
			id, business_domain, fingerprint, as_of, raw_row_count, records, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, r.rebind(query),
		snap.ID, string(d), snap.Fingerprint, snap.AsOf,
		snap.RawRowCount, string(records), snap.CreatedAt,
	)
	return err
}

// GetSnapshot retrieves a snapshot by ID with domain isolation.
func (r *SQLRepository) GetSnapshot(ctx context.Context, d domain.BusinessDomain, snapshotID string) (*domain.Snapshot, error) {
	if d == "" {
		return nil, fmt.Errorf("%w: business domain is required", ErrInvalidInput)
	}

	query := `
		SELECT id, business_domain, fingerprint, as_of, raw_row_count, records, created_at
		FROM snapshots
		WHERE business_domain = ? AND id = ?
	`

	return r.scanSnapshot(r.db.QueryRowContext(ctx, r.rebind(query), string(d), snapshotID))
}

// LatestSnapshot retrieves the most recently ingested snapshot for a
// domain.
func (r *SQLRepository) LatestSnapshot(ctx context.Context, d domain.BusinessDomain) (*domain.Snapshot, error) {
	if d == "" {
		return nil, fmt.Errorf("%w: business domain is required", ErrInvalidInput)
	}

	query := `
		SELECT id, business_domain, fingerprint, as_of, raw_row_count, records, created_at
		FROM snapshots
		WHERE business_domain = ?
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.scanSnapshot(r.db.QueryRowContext(ctx, r.rebind(query), string(d)))
}

func (r *SQLRepository) scanSnapshot(row *sql.Row) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	var records string

	err := row.Scan(
		&snap.ID, &snap.Domain, &snap.Fingerprint, &snap.AsOf,
		&snap.RawRowCount, &records, &snap.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(records), &snap.Records); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot records: %w", err)
	}

	return &snap, nil
}

// ListSnapshots retrieves snapshot metadata for a domain, newest
// first, without the record payloads.
func (r *SQLRepository) ListSnapshots(ctx context.Context, d domain.BusinessDomain, limit int) ([]*domain.SnapshotMeta, error) {
	if d == "" {
		return nil, fmt.Errorf("%w: business domain is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, business_domain, fingerprint, as_of, raw_row_count, records, created_at
		FROM snapshots
		WHERE business_domain = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), string(d), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []*domain.SnapshotMeta
	for rows.Next() {
		var meta domain.SnapshotMeta
		var records string

		if err := rows.Scan(
			&meta.ID, &meta.Domain, &meta.Fingerprint, &meta.AsOf,
			&meta.RawRowCount, &records, &meta.CreatedAt,
		); err != nil {
			return nil, err
		}

		var payload []domain.Record
		if err := json.Unmarshal([]byte(records), &payload); err == nil {
			meta.RecordCount = len(payload)
		}
		metas = append(metas, &meta)
	}

	return metas, rows.Err()
}

// SaveDimensionConfig stores a custom dimension configuration, upserting
// on (id, domain).
func (r *SQLRepository) SaveDimensionConfig(ctx context.Context, d domain.BusinessDomain, cfg *domain.DimensionConfig) error {
	if d == "" {
		return fmt.Errorf("%w: business domain is required", ErrInvalidInput)
	}
	if cfg == nil || cfg.ID == "" {
		return fmt.Errorf("%w: dimension config with id is required", ErrInvalidInput)
	}

	enabled := 0
	if cfg.Enabled {
		enabled = 1
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO dimension_configs (
			id, business_domain, name, description, version, expression, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, business_domain) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			version = excluded.version,
			expression = excluded.expression,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		cfg.ID, string(d), cfg.Name, cfg.Description,
		cfg.Version, cfg.Expression, enabled,
		now, now,
	)
	return err
}

// GetDimensionConfig retrieves an enabled dimension configuration.
func (r *SQLRepository) GetDimensionConfig(ctx context.Context, d domain.BusinessDomain, dimID string) (*domain.DimensionConfig, error) {
	if d == "" {
		return nil, fmt.Errorf("%w: business domain is required", ErrInvalidInput)
	}

	query := `
		SELECT id, business_domain, name, description, version, expression, enabled
		FROM dimension_configs
		WHERE business_domain = ? AND id = ? AND enabled = 1
	`

	var cfg domain.DimensionConfig
	var enabled int

	err := r.db.QueryRowContext(ctx, r.rebind(query), string(d), dimID).Scan(
		&cfg.ID, &cfg.Domain, &cfg.Name, &cfg.Description,
		&cfg.Version, &cfg.Expression, &enabled,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	cfg.Enabled = enabled == 1
	return &cfg, nil
}

// ListDimensionConfigs retrieves all enabled dimension configurations
// for a domain.
func (r *SQLRepository) ListDimensionConfigs(ctx context.Context, d domain.BusinessDomain) ([]*domain.DimensionConfig, error) {
	if d == "" {
		return nil, fmt.Errorf("%w: business domain is required", ErrInvalidInput)
	}

	query := `
		SELECT id, business_domain, name, description, version, expression, enabled
		FROM dimension_configs
		WHERE business_domain = ? AND enabled = 1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), string(d))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*domain.DimensionConfig
	for rows.Next() {
		var cfg domain.DimensionConfig
		var enabled int

		if err := rows.Scan(
			&cfg.ID, &cfg.Domain, &cfg.Name, &cfg.Description,
			&cfg.Version, &cfg.Expression, &enabled,
		); err != nil {
			return nil, err
		}

		cfg.Enabled = enabled == 1
		configs = append(configs, &cfg)
	}

	return configs, rows.Err()
}

// DeleteDimensionConfig soft-deletes a dimension config by setting
// enabled = 0.
func (r *SQLRepository) DeleteDimensionConfig(ctx context.Context, d domain.BusinessDomain, dimID string) error {
	if d == "" {
		return fmt.Errorf("%w: business domain is required", ErrInvalidInput)
	}

	query := `
		UPDATE dimension_configs
		SET enabled = 0, updated_at = ?
		WHERE business_domain = ? AND id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query), time.Now().UTC(), string(d), dimID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
