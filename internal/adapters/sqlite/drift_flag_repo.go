package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/catalogd/internal/core/driftstate"
	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/secondary"
)

// DriftFlagRepository implements secondary.DriftFlagRepository with
// SQLite. State transition legality comes from core/driftstate and is
// enforced inside the UPDATE statements themselves, so an illegal
// transition is a zero-row update, never a partial write.
type DriftFlagRepository struct {
	db Querier
}

// NewDriftFlagRepository creates a new SQLite drift flag repository.
func NewDriftFlagRepository(db Querier) *DriftFlagRepository {
	return &DriftFlagRepository{db: db}
}

const driftFlagColumns = `f.id, f.team_id, f.service_id, f.drift_type, f.field_name,
	f.manifest_value, f.current_value, f.status, f.first_detected_at, f.last_detected_at,
	f.resolved_at, f.resolved_by, f.sync_history_id,
	s.name, COALESCE(s.manifest_key, ''), COALESCE(u.display_name, '')`

const driftFlagJoins = ` FROM drift_flags f
	JOIN services s ON s.id = f.service_id
	LEFT JOIN users u ON u.id = f.resolved_by`

func scanDriftFlag(scan func(dest ...any) error) (*secondary.DriftFlagRecord, error) {
	var (
		fieldName     sql.NullString
		manifestValue sql.NullString
		currentValue  sql.NullString
		resolvedAt    sql.NullTime
		resolvedBy    sql.NullString
		syncHistoryID sql.NullString
	)

	rec := &secondary.DriftFlagRecord{}
	err := scan(
		&rec.ID, &rec.TeamID, &rec.ServiceID, &rec.DriftType, &fieldName,
		&manifestValue, &currentValue, &rec.Status, &rec.FirstDetected, &rec.LastDetected,
		&resolvedAt, &resolvedBy, &syncHistoryID,
		&rec.ServiceName, &rec.ServiceManifestKey, &rec.ResolvedByName,
	)
	if err != nil {
		return nil, err
	}

	rec.FieldName = fieldName.String
	rec.ManifestValue = manifestValue.String
	rec.CurrentValue = currentValue.String
	rec.ResolvedBy = resolvedBy.String
	rec.SyncHistoryID = syncHistoryID.String
	if resolvedAt.Valid {
		t := resolvedAt.Time
		rec.ResolvedAt = &t
	}
	return rec, nil
}

// Create inserts a new flag. Status defaults to pending and both
// detection timestamps to now; the ID is assigned when empty.
func (r *DriftFlagRepository) Create(ctx context.Context, rec *secondary.DriftFlagRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = models.DriftStatusPending
	}
	now := time.Now().UTC()
	if rec.FirstDetected.IsZero() {
		rec.FirstDetected = now
	}
	if rec.LastDetected.IsZero() {
		rec.LastDetected = now
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO drift_flags (id, team_id, service_id, drift_type, field_name,
			manifest_value, current_value, status, first_detected_at, last_detected_at, sync_history_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TeamID, rec.ServiceID, rec.DriftType, nullString(rec.FieldName),
		nullString(rec.ManifestValue), nullString(rec.CurrentValue), rec.Status,
		rec.FirstDetected, rec.LastDetected, nullString(rec.SyncHistoryID),
	)
	if err != nil {
		return fmt.Errorf("failed to create drift flag: %w", err)
	}
	return nil
}

// GetByID retrieves a flag by ID. Returns nil when it does not exist.
func (r *DriftFlagRepository) GetByID(ctx context.Context, id string) (*secondary.DriftFlagRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+driftFlagColumns+driftFlagJoins+" WHERE f.id = ?", id)
	rec, err := scanDriftFlag(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get drift flag: %w", err)
	}
	return rec, nil
}

// ListByTeam retrieves a team's flags matching the filters plus the
// unpaginated total.
func (r *DriftFlagRepository) ListByTeam(ctx context.Context, teamID string, filters secondary.DriftFlagFilters) ([]*secondary.DriftFlagRecord, int, error) {
	where := " WHERE f.team_id = ?"
	args := []any{teamID}

	if filters.Status != "" {
		where += " AND f.status = ?"
		args = append(args, filters.Status)
	}
	if filters.DriftType != "" {
		where += " AND f.drift_type = ?"
		args = append(args, filters.DriftType)
	}
	if filters.ServiceID != "" {
		where += " AND f.service_id = ?"
		args = append(args, filters.ServiceID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+driftFlagJoins+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count drift flags: %w", err)
	}

	query := "SELECT " + driftFlagColumns + driftFlagJoins + where + " ORDER BY f.last_detected_at DESC, f.id"
	if filters.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filters.Limit, filters.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list drift flags: %w", err)
	}
	defer rows.Close()

	var flags []*secondary.DriftFlagRecord
	for rows.Next() {
		rec, err := scanDriftFlag(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan drift flag: %w", err)
		}
		flags = append(flags, rec)
	}
	return flags, total, rows.Err()
}

// ListActiveByService retrieves a service's pending and dismissed flags.
func (r *DriftFlagRepository) ListActiveByService(ctx context.Context, serviceID string) ([]*secondary.DriftFlagRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+driftFlagColumns+driftFlagJoins+
			" WHERE f.service_id = ? AND f.status IN ('pending', 'dismissed') ORDER BY f.first_detected_at, f.id",
		serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active drift flags: %w", err)
	}
	defer rows.Close()

	var flags []*secondary.DriftFlagRecord
	for rows.Next() {
		rec, err := scanDriftFlag(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan drift flag: %w", err)
		}
		flags = append(flags, rec)
	}
	return flags, rows.Err()
}

// GetActiveFieldFlag retrieves the active field_change flag for the
// exact (service, field) pair. Returns nil when there is none.
func (r *DriftFlagRepository) GetActiveFieldFlag(ctx context.Context, serviceID, field string) (*secondary.DriftFlagRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+driftFlagColumns+driftFlagJoins+
			" WHERE f.service_id = ? AND f.field_name = ? AND f.drift_type = 'field_change' AND f.status IN ('pending', 'dismissed')",
		serviceID, field)
	rec, err := scanDriftFlag(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active field flag: %w", err)
	}
	return rec, nil
}

// GetActiveRemovalFlag retrieves the active service_removal flag for a
// service. Returns nil when there is none.
func (r *DriftFlagRepository) GetActiveRemovalFlag(ctx context.Context, serviceID string) (*secondary.DriftFlagRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+driftFlagColumns+driftFlagJoins+
			" WHERE f.service_id = ? AND f.drift_type = 'service_removal' AND f.status IN ('pending', 'dismissed')",
		serviceID)
	rec, err := scanDriftFlag(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active removal flag: %w", err)
	}
	return rec, nil
}

// CountByTeam summarizes a team's open drift.
func (r *DriftFlagRepository) CountByTeam(ctx context.Context, teamID string) (*secondary.DriftFlagCounts, error) {
	counts := &secondary.DriftFlagCounts{}
	err := r.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'dismissed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'pending' AND drift_type = 'field_change' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'pending' AND drift_type = 'service_removal' THEN 1 ELSE 0 END), 0)
		FROM drift_flags WHERE team_id = ?`,
		teamID,
	).Scan(&counts.Pending, &counts.Dismissed, &counts.FieldChangePending, &counts.RemovalPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count drift flags: %w", err)
	}
	return counts, nil
}

// Resolve moves a flag to dismissed, accepted or resolved, stamping
// resolved_at/resolved_by. Returns false without error when the flag is
// missing or the transition is illegal from its current status.
func (r *DriftFlagRepository) Resolve(ctx context.Context, id, newStatus, resolvedBy string) (bool, error) {
	if !driftstate.IsResolveTarget(newStatus) {
		return false, nil
	}
	sources := driftstate.LegalSources(newStatus)
	placeholders := strings.Repeat("?, ", len(sources)-1) + "?"

	args := []any{newStatus, time.Now().UTC(), nullString(resolvedBy), id}
	for _, s := range sources {
		args = append(args, s)
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE drift_flags SET status = ?, resolved_at = ?, resolved_by = ? WHERE id = ? AND status IN ("+placeholders+")",
		args...)
	if err != nil {
		return false, fmt.Errorf("failed to resolve drift flag: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// Reopen returns a dismissed flag to pending and clears its resolution.
// Returns false for any other source status or a missing flag.
func (r *DriftFlagRepository) Reopen(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE drift_flags SET status = 'pending', resolved_at = NULL, resolved_by = NULL WHERE id = ? AND status = 'dismissed'",
		id)
	if err != nil {
		return false, fmt.Errorf("failed to reopen drift flag: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// UpdateDetection overwrites both compared values and bumps
// last_detected_at.
func (r *DriftFlagRepository) UpdateDetection(ctx context.Context, id, manifestValue, currentValue string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE drift_flags SET manifest_value = ?, current_value = ?, last_detected_at = ? WHERE id = ?",
		nullString(manifestValue), nullString(currentValue), time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to update drift detection: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// TouchLastDetected bumps last_detected_at only.
func (r *DriftFlagRepository) TouchLastDetected(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE drift_flags SET last_detected_at = ? WHERE id = ?",
		time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to touch drift flag: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// BulkResolve applies Resolve to each id, silently skipping missing
// flags and illegal transitions, and returns the number changed.
func (r *DriftFlagRepository) BulkResolve(ctx context.Context, ids []string, newStatus, resolvedBy string) (int, error) {
	count := 0
	for _, id := range ids {
		ok, err := r.Resolve(ctx, id, newStatus, resolvedBy)
		if err != nil {
			return count, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

// ResolveAllForService accepts every active flag for a service. Used
// when the service is deleted or leaves manifest management.
func (r *DriftFlagRepository) ResolveAllForService(ctx context.Context, serviceID string) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE drift_flags SET status = 'accepted', resolved_at = ?, resolved_by = NULL
		WHERE service_id = ? AND status IN ('pending', 'dismissed')`,
		time.Now().UTC(), serviceID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve drift flags for service: %w", err)
	}
	affected, _ := result.RowsAffected()
	return int(affected), nil
}

// ResolveAllForTeam accepts every active flag for a team. Used when the
// team's manifest config is removed.
func (r *DriftFlagRepository) ResolveAllForTeam(ctx context.Context, teamID string) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE drift_flags SET status = 'accepted', resolved_at = ?, resolved_by = NULL
		WHERE team_id = ? AND status IN ('pending', 'dismissed')`,
		time.Now().UTC(), teamID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve drift flags for team: %w", err)
	}
	affected, _ := result.RowsAffected()
	return int(affected), nil
}

// UpsertFieldDrift records a detected field drift, reusing the active
// flag for the (service, field) pair when one exists:
//
//   - no active flag: create a pending one (action created)
//   - pending: overwrite both values, bump last_detected_at (updated)
//   - dismissed, same manifest value: bump last_detected_at only
//     (unchanged) so a dismissal sticks until the manifest moves
//   - dismissed, new manifest value: reopen to pending, overwrite both
//     values, clear the resolution (reopened)
//
// Errors only when the service id does not exist.
func (r *DriftFlagRepository) UpsertFieldDrift(ctx context.Context, serviceID, field, manifestValue, currentValue, syncHistoryID string) (*secondary.DriftFlagRecord, string, error) {
	teamID, err := r.serviceTeam(ctx, serviceID)
	if err != nil {
		return nil, "", err
	}

	existing, err := r.GetActiveFieldFlag(ctx, serviceID, field)
	if err != nil {
		return nil, "", err
	}

	if existing == nil {
		rec := &secondary.DriftFlagRecord{
			TeamID:        teamID,
			ServiceID:     serviceID,
			DriftType:     models.DriftTypeFieldChange,
			FieldName:     field,
			ManifestValue: manifestValue,
			CurrentValue:  currentValue,
			SyncHistoryID: syncHistoryID,
		}
		if err := r.Create(ctx, rec); err != nil {
			return nil, "", err
		}
		return r.mustGet(ctx, rec.ID, models.UpsertActionCreated)
	}

	switch existing.Status {
	case models.DriftStatusPending:
		if _, err := r.UpdateDetection(ctx, existing.ID, manifestValue, currentValue); err != nil {
			return nil, "", err
		}
		return r.mustGet(ctx, existing.ID, models.UpsertActionUpdated)

	case models.DriftStatusDismissed:
		if existing.ManifestValue == manifestValue {
			if _, err := r.TouchLastDetected(ctx, existing.ID); err != nil {
				return nil, "", err
			}
			return r.mustGet(ctx, existing.ID, models.UpsertActionUnchanged)
		}
		if _, err := r.Reopen(ctx, existing.ID); err != nil {
			return nil, "", err
		}
		if _, err := r.UpdateDetection(ctx, existing.ID, manifestValue, currentValue); err != nil {
			return nil, "", err
		}
		return r.mustGet(ctx, existing.ID, models.UpsertActionReopened)

	default:
		// Unreachable: active lookups only return pending/dismissed.
		return nil, "", fmt.Errorf("active drift flag %s has unexpected status %s", existing.ID, existing.Status)
	}
}

// UpsertRemovalDrift records a detected removal. Removal has no value
// to compare, so a dismissed flag is only touched (a dismissal is
// final until an explicit reopen) and a pending one is touched too.
func (r *DriftFlagRepository) UpsertRemovalDrift(ctx context.Context, serviceID, syncHistoryID string) (*secondary.DriftFlagRecord, string, error) {
	teamID, err := r.serviceTeam(ctx, serviceID)
	if err != nil {
		return nil, "", err
	}

	existing, err := r.GetActiveRemovalFlag(ctx, serviceID)
	if err != nil {
		return nil, "", err
	}

	if existing == nil {
		rec := &secondary.DriftFlagRecord{
			TeamID:        teamID,
			ServiceID:     serviceID,
			DriftType:     models.DriftTypeServiceRemoval,
			SyncHistoryID: syncHistoryID,
		}
		if err := r.Create(ctx, rec); err != nil {
			return nil, "", err
		}
		return r.mustGet(ctx, rec.ID, models.UpsertActionCreated)
	}

	if _, err := r.TouchLastDetected(ctx, existing.ID); err != nil {
		return nil, "", err
	}
	action := models.UpsertActionUpdated
	if existing.Status == models.DriftStatusDismissed {
		action = models.UpsertActionUnchanged
	}
	return r.mustGet(ctx, existing.ID, action)
}

// DeleteOlderThan removes flags last detected before the cutoff,
// restricted to the given statuses when provided. Callers pass the
// terminal statuses to keep retention away from active flags.
func (r *DriftFlagRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, statuses []string) (int, error) {
	query := "DELETE FROM drift_flags WHERE last_detected_at < ?"
	args := []any{cutoff.UTC()}

	if len(statuses) > 0 {
		query += " AND status IN (" + strings.Repeat("?, ", len(statuses)-1) + "?)"
		for _, s := range statuses {
			args = append(args, s)
		}
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old drift flags: %w", err)
	}
	affected, _ := result.RowsAffected()
	return int(affected), nil
}

func (r *DriftFlagRepository) serviceTeam(ctx context.Context, serviceID string) (string, error) {
	var teamID string
	err := r.db.QueryRowContext(ctx, "SELECT team_id FROM services WHERE id = ?", serviceID).Scan(&teamID)
	if err == sql.ErrNoRows {
		return "", &secondary.NotFoundError{Entity: "service", ID: serviceID}
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up service: %w", err)
	}
	return teamID, nil
}

func (r *DriftFlagRepository) mustGet(ctx context.Context, id, action string) (*secondary.DriftFlagRecord, string, error) {
	rec, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if rec == nil {
		return nil, "", fmt.Errorf("drift flag %s vanished mid-upsert", id)
	}
	return rec, action, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Ensure DriftFlagRepository implements the interface
var _ secondary.DriftFlagRepository = (*DriftFlagRepository)(nil)
