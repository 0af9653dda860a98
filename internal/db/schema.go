package db

// SchemaSQL is the complete schema for fresh catalogd installs.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests
// use it via GetSchemaSQL(), so repository code that references a column
// missing here fails immediately with "no such column" instead of
// drifting silently.
const SchemaSQL = `
-- Teams (owners of services and manifest configs)
CREATE TABLE IF NOT EXISTS teams (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Users (referenced by drift-flag resolution and sync triggers)
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	email TEXT UNIQUE,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Services (catalog entries; a subset is manifest-managed)
CREATE TABLE IF NOT EXISTS services (
	id TEXT PRIMARY KEY,
	team_id TEXT NOT NULL,
	name TEXT NOT NULL,
	endpoint TEXT,
	health_endpoint TEXT,
	poll_interval_seconds INTEGER NOT NULL DEFAULT 60,
	status TEXT NOT NULL CHECK(status IN ('active', 'inactive')) DEFAULT 'active',
	manifest_key TEXT,
	manifest_managed INTEGER NOT NULL DEFAULT 0,
	manifest_last_synced_values TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE,
	UNIQUE(team_id, manifest_key)
);

-- Declared dependencies between services
CREATE TABLE IF NOT EXISTS service_dependencies (
	id TEXT PRIMARY KEY,
	service_id TEXT NOT NULL,
	depends_on_service_id TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (service_id) REFERENCES services(id) ON DELETE CASCADE,
	FOREIGN KEY (depends_on_service_id) REFERENCES services(id) ON DELETE CASCADE,
	UNIQUE(service_id, depends_on_service_id)
);

-- Per-team manifest configuration and last-sync snapshot
CREATE TABLE IF NOT EXISTS team_manifest_configs (
	team_id TEXT PRIMARY KEY,
	manifest_url TEXT NOT NULL,
	enabled INTEGER NOT NULL DEFAULT 1,
	sync_policy TEXT,
	last_sync_status TEXT CHECK(last_sync_status IN ('success', 'partial', 'failed')),
	last_sync_error TEXT,
	last_sync_summary TEXT,
	last_sync_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE
);

-- Append-only log of sync runs
CREATE TABLE IF NOT EXISTS manifest_sync_history (
	id TEXT PRIMARY KEY,
	team_id TEXT NOT NULL,
	trigger_type TEXT NOT NULL CHECK(trigger_type IN ('manual', 'scheduled')),
	triggered_by TEXT,
	manifest_url TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('success', 'partial', 'failed')),
	summary TEXT,
	errors TEXT,
	warnings TEXT,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE,
	FOREIGN KEY (triggered_by) REFERENCES users(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_sync_history_team_created
	ON manifest_sync_history(team_id, created_at DESC);

-- Drift flags (one discrepancy per service, and per field for field drift)
CREATE TABLE IF NOT EXISTS drift_flags (
	id TEXT PRIMARY KEY,
	team_id TEXT NOT NULL,
	service_id TEXT NOT NULL,
	drift_type TEXT NOT NULL CHECK(drift_type IN ('field_change', 'service_removal')),
	field_name TEXT,
	manifest_value TEXT,
	current_value TEXT,
	status TEXT NOT NULL CHECK(status IN ('pending', 'dismissed', 'accepted', 'resolved')) DEFAULT 'pending',
	first_detected_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_detected_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	resolved_at DATETIME,
	resolved_by TEXT,
	sync_history_id TEXT,
	FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE,
	FOREIGN KEY (service_id) REFERENCES services(id) ON DELETE CASCADE,
	FOREIGN KEY (resolved_by) REFERENCES users(id) ON DELETE SET NULL,
	FOREIGN KEY (sync_history_id) REFERENCES manifest_sync_history(id) ON DELETE SET NULL
);

-- The upsert contract allows at most one active (pending/dismissed)
-- flag per key; these partial indexes make the database reject any
-- code path that would violate that.
CREATE UNIQUE INDEX IF NOT EXISTS idx_drift_active_field
	ON drift_flags(service_id, field_name)
	WHERE drift_type = 'field_change' AND status IN ('pending', 'dismissed');

CREATE UNIQUE INDEX IF NOT EXISTS idx_drift_active_removal
	ON drift_flags(service_id)
	WHERE drift_type = 'service_removal' AND status IN ('pending', 'dismissed');

CREATE INDEX IF NOT EXISTS idx_drift_flags_team_status
	ON drift_flags(team_id, status);
`

// GetSchemaSQL returns the authoritative schema for fresh installs and
// test databases.
func GetSchemaSQL() string {
	return SchemaSQL
}
