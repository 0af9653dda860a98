package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/secondary"
)

// ManifestConfigRepository implements secondary.ManifestConfigRepository
// with SQLite. The sync_policy and last_sync_summary columns hold JSON;
// this adapter is the only place that (de)serializes them, and a
// malformed stored value reads back as "no data".
type ManifestConfigRepository struct {
	db Querier
}

// NewManifestConfigRepository creates a new SQLite manifest config
// repository.
func NewManifestConfigRepository(db Querier) *ManifestConfigRepository {
	return &ManifestConfigRepository{db: db}
}

const configColumns = `team_id, manifest_url, enabled, sync_policy,
	last_sync_status, last_sync_error, last_sync_summary, last_sync_at, created_at, updated_at`

func scanConfig(scan func(dest ...any) error) (*secondary.ManifestConfigRecord, error) {
	var (
		policy     sql.NullString
		status     sql.NullString
		errMsg     sql.NullString
		summary    sql.NullString
		lastSyncAt sql.NullTime
	)

	rec := &secondary.ManifestConfigRecord{}
	err := scan(
		&rec.TeamID, &rec.ManifestURL, &rec.Enabled, &policy,
		&status, &errMsg, &summary, &lastSyncAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Policy = models.DefaultSyncPolicy()
	if policy.Valid && policy.String != "" {
		var p models.SyncPolicy
		if json.Unmarshal([]byte(policy.String), &p) == nil && p.OnFieldDrift != "" {
			rec.Policy = p
		}
	}
	rec.LastSyncStatus = status.String
	rec.LastSyncError = errMsg.String
	if summary.Valid && summary.String != "" {
		var s models.SyncSummary
		if json.Unmarshal([]byte(summary.String), &s) == nil {
			rec.LastSyncSummary = &s
		}
	}
	if lastSyncAt.Valid {
		t := lastSyncAt.Time
		rec.LastSyncAt = &t
	}
	return rec, nil
}

// Upsert creates or replaces a team's manifest configuration. The
// last-sync snapshot is preserved on update.
func (r *ManifestConfigRepository) Upsert(ctx context.Context, rec *secondary.ManifestConfigRecord) error {
	policyJSON, err := json.Marshal(rec.Policy)
	if err != nil {
		return fmt.Errorf("failed to marshal sync policy: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO team_manifest_configs (team_id, manifest_url, enabled, sync_policy)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(team_id) DO UPDATE SET
			manifest_url = excluded.manifest_url,
			enabled = excluded.enabled,
			sync_policy = excluded.sync_policy,
			updated_at = CURRENT_TIMESTAMP`,
		rec.TeamID, rec.ManifestURL, rec.Enabled, string(policyJSON))
	if err != nil {
		return fmt.Errorf("failed to upsert manifest config: %w", err)
	}
	return nil
}

// GetByTeam retrieves a team's config. Returns nil when none exists.
func (r *ManifestConfigRepository) GetByTeam(ctx context.Context, teamID string) (*secondary.ManifestConfigRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+configColumns+" FROM team_manifest_configs WHERE team_id = ?", teamID)
	rec, err := scanConfig(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest config: %w", err)
	}
	return rec, nil
}

// ListEnabled retrieves every enabled config, for the scheduler.
func (r *ManifestConfigRepository) ListEnabled(ctx context.Context) ([]*secondary.ManifestConfigRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+configColumns+" FROM team_manifest_configs WHERE enabled = 1 ORDER BY team_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list manifest configs: %w", err)
	}
	defer rows.Close()

	var configs []*secondary.ManifestConfigRecord
	for rows.Next() {
		rec, err := scanConfig(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan manifest config: %w", err)
		}
		configs = append(configs, rec)
	}
	return configs, rows.Err()
}

// Delete removes a team's config. Services and drift flags created by
// earlier syncs remain.
func (r *ManifestConfigRepository) Delete(ctx context.Context, teamID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM team_manifest_configs WHERE team_id = ?", teamID)
	if err != nil {
		return false, fmt.Errorf("failed to delete manifest config: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// RecordSyncResult updates the cached last-sync snapshot after a run.
func (r *ManifestConfigRepository) RecordSyncResult(ctx context.Context, teamID, status, errMsg string, summary *models.SyncSummary, at time.Time) error {
	var summaryJSON sql.NullString
	if summary != nil {
		data, err := json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("failed to marshal sync summary: %w", err)
		}
		summaryJSON = sql.NullString{String: string(data), Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE team_manifest_configs SET last_sync_status = ?, last_sync_error = ?,
			last_sync_summary = ?, last_sync_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE team_id = ?`,
		status, nullString(errMsg), summaryJSON, at.UTC(), teamID)
	if err != nil {
		return fmt.Errorf("failed to record sync result: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return &secondary.NotFoundError{Entity: "manifest config", ID: teamID}
	}
	return nil
}

// Ensure ManifestConfigRepository implements the interface
var _ secondary.ManifestConfigRepository = (*ManifestConfigRepository)(nil)
