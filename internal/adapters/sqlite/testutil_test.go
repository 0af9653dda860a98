// Package sqlite_test contains integration tests for SQLite
// repositories.
//
// All test setup goes through setupTestDB(), which loads the
// authoritative schema via db.GetSchemaSQL(). Do not hardcode CREATE
// TABLE statements in test files; a repository referencing a column
// missing from the real schema must fail here, not in production.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/catalogd/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative
// schema and foreign keys enabled.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	// A second pooled connection would see its own empty in-memory
	// database.
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedTeam inserts a test team and returns its ID.
func seedTeam(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "team-1"
	}
	if name == "" {
		name = "Platform"
	}
	if _, err := db.Exec("INSERT INTO teams (id, name) VALUES (?, ?)", id, name); err != nil {
		t.Fatalf("failed to seed team: %v", err)
	}
	return id
}

// seedUser inserts a test user and returns its ID.
func seedUser(t *testing.T, db *sql.DB, id, displayName string) string {
	t.Helper()
	if id == "" {
		id = "user-1"
	}
	if displayName == "" {
		displayName = "Alex Reviewer"
	}
	if _, err := db.Exec("INSERT INTO users (id, display_name) VALUES (?, ?)", id, displayName); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return id
}

// seedService inserts a manifest-managed test service and returns its
// ID.
func seedService(t *testing.T, db *sql.DB, id, teamID, name, manifestKey string) string {
	t.Helper()
	if id == "" {
		id = "svc-1"
	}
	if teamID == "" {
		teamID = "team-1"
	}
	if name == "" {
		name = "Payments API"
	}
	if manifestKey == "" {
		manifestKey = "payments"
	}
	_, err := db.Exec(
		`INSERT INTO services (id, team_id, name, manifest_key, manifest_managed, status)
		VALUES (?, ?, ?, ?, 1, 'active')`,
		id, teamID, name, manifestKey)
	if err != nil {
		t.Fatalf("failed to seed service: %v", err)
	}
	return id
}

// seedHistory inserts a minimal sync history row and returns its ID.
func seedHistory(t *testing.T, db *sql.DB, id, teamID string) string {
	t.Helper()
	if id == "" {
		id = "hist-1"
	}
	if teamID == "" {
		teamID = "team-1"
	}
	_, err := db.Exec(
		`INSERT INTO manifest_sync_history (id, team_id, trigger_type, manifest_url, status)
		VALUES (?, ?, 'manual', 'https://example.com/manifest.json', 'success')`,
		id, teamID)
	if err != nil {
		t.Fatalf("failed to seed sync history: %v", err)
	}
	return id
}
