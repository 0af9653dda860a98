package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/secondary"
)

// SyncHistoryRepository implements secondary.SyncHistoryRepository with
// SQLite. Rows are append-only: nothing here mutates an existing entry.
type SyncHistoryRepository struct {
	db Querier
}

// NewSyncHistoryRepository creates a new SQLite sync history repository.
func NewSyncHistoryRepository(db Querier) *SyncHistoryRepository {
	return &SyncHistoryRepository{db: db}
}

// Append inserts one run record, assigning its ID and timestamp when
// unset.
func (r *SyncHistoryRepository) Append(ctx context.Context, rec *secondary.SyncHistoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	summaryJSON, err := marshalNullable(rec.Summary)
	if err != nil {
		return err
	}
	errorsJSON, err := marshalNullable(rec.Errors)
	if err != nil {
		return err
	}
	warningsJSON, err := marshalNullable(rec.Warnings)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO manifest_sync_history (id, team_id, trigger_type, triggered_by,
			manifest_url, status, summary, errors, warnings, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TeamID, rec.TriggerType, nullString(rec.TriggeredBy),
		rec.ManifestURL, rec.Status, summaryJSON, errorsJSON, warningsJSON,
		rec.Duration.Milliseconds(), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append sync history: %w", err)
	}
	return nil
}

// ListByTeam retrieves a page of a team's history, newest first, plus
// the unpaginated total.
func (r *SyncHistoryRepository) ListByTeam(ctx context.Context, teamID string, limit, offset int) ([]*secondary.SyncHistoryRecord, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM manifest_sync_history WHERE team_id = ?", teamID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sync history: %w", err)
	}

	query := `SELECT id, team_id, trigger_type, triggered_by, manifest_url, status,
		summary, errors, warnings, duration_ms, created_at
	FROM manifest_sync_history WHERE team_id = ? ORDER BY created_at DESC, id`
	args := []any{teamID}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sync history: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.SyncHistoryRecord
	for rows.Next() {
		var (
			triggeredBy sql.NullString
			summary     sql.NullString
			errList     sql.NullString
			warnList    sql.NullString
			durationMS  int64
		)

		rec := &secondary.SyncHistoryRecord{}
		err := rows.Scan(&rec.ID, &rec.TeamID, &rec.TriggerType, &triggeredBy,
			&rec.ManifestURL, &rec.Status, &summary, &errList, &warnList,
			&durationMS, &rec.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan sync history: %w", err)
		}

		rec.TriggeredBy = triggeredBy.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if summary.Valid && summary.String != "" {
			var s models.SyncSummary
			if json.Unmarshal([]byte(summary.String), &s) == nil {
				rec.Summary = &s
			}
		}
		// Malformed serialized lists read back as empty, not as errors.
		if errList.Valid && errList.String != "" {
			json.Unmarshal([]byte(errList.String), &rec.Errors)
		}
		if warnList.Valid && warnList.String != "" {
			json.Unmarshal([]byte(warnList.String), &rec.Warnings)
		}

		entries = append(entries, rec)
	}
	return entries, total, rows.Err()
}

// DeleteOlderThan removes entries created before the cutoff.
func (r *SyncHistoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM manifest_sync_history WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old sync history: %w", err)
	}
	affected, _ := result.RowsAffected()
	return int(affected), nil
}

func marshalNullable(v any) (sql.NullString, error) {
	switch val := v.(type) {
	case *models.SyncSummary:
		if val == nil {
			return sql.NullString{}, nil
		}
	case []string:
		if len(val) == 0 {
			return sql.NullString{}, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal history field: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// Ensure SyncHistoryRepository implements the interface
var _ secondary.SyncHistoryRepository = (*SyncHistoryRepository)(nil)
