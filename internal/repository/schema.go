package repository

// Schema definitions for the Config Operations Hub database.
// Compatible with both SQLite and PostgreSQL.

const schemaSnapshots = `
CREATE TABLE IF NOT EXISTS snapshots (
    id TEXT PRIMARY KEY,
    business_domain TEXT NOT NULL,
    fingerprint TEXT NOT NULL,
    as_of TIMESTAMP NOT NULL,
    raw_row_count INTEGER NOT NULL,
    records TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_domain ON snapshots(business_domain);
CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(business_domain, created_at);
CREATE INDEX IF NOT EXISTS idx_snapshots_fingerprint ON snapshots(business_domain, fingerprint);
`

const schemaDimensionConfigs = `
CREATE TABLE IF NOT EXISTS dimension_configs (
    id TEXT NOT NULL,
    business_domain TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    version TEXT NOT NULL,
    expression TEXT NOT NULL,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (id, business_domain)
);

CREATE INDEX IF NOT EXISTS idx_dimension_configs_domain ON dimension_configs(business_domain);
CREATE INDEX IF NOT EXISTS idx_dimension_configs_enabled ON dimension_configs(business_domain, enabled);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaSnapshots,
		schemaDimensionConfigs,
	}
}
