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

// ServiceRepository implements secondary.ServiceRepository with SQLite.
type ServiceRepository struct {
	db Querier
}

// NewServiceRepository creates a new SQLite service repository.
func NewServiceRepository(db Querier) *ServiceRepository {
	return &ServiceRepository{db: db}
}

const serviceColumns = `id, team_id, name, COALESCE(endpoint, ''), COALESCE(health_endpoint, ''),
	poll_interval_seconds, status, COALESCE(manifest_key, ''), manifest_managed,
	manifest_last_synced_values, created_at, updated_at`

func scanService(scan func(dest ...any) error) (*models.Service, error) {
	var lastSynced sql.NullString

	svc := &models.Service{}
	err := scan(
		&svc.ID, &svc.TeamID, &svc.Name, &svc.Endpoint, &svc.HealthEndpoint,
		&svc.PollIntervalSeconds, &svc.Status, &svc.ManifestKey, &svc.ManifestManaged,
		&lastSynced, &svc.CreatedAt, &svc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastSynced.Valid && lastSynced.String != "" {
		var fields models.ManifestFields
		// Malformed stored JSON degrades to "no snapshot" rather than
		// failing the read.
		if json.Unmarshal([]byte(lastSynced.String), &fields) == nil {
			svc.LastSyncedValues = &fields
		}
	}
	return svc, nil
}

// Create persists a new service.
func (r *ServiceRepository) Create(ctx context.Context, svc *models.Service) error {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	if svc.Status == "" {
		svc.Status = models.ServiceStatusActive
	}
	if svc.PollIntervalSeconds <= 0 {
		svc.PollIntervalSeconds = models.DefaultPollIntervalSeconds
	}

	lastSynced, err := marshalFields(svc.LastSyncedValues)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO services (id, team_id, name, endpoint, health_endpoint,
			poll_interval_seconds, status, manifest_key, manifest_managed, manifest_last_synced_values)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		svc.ID, svc.TeamID, svc.Name, nullString(svc.Endpoint), nullString(svc.HealthEndpoint),
		svc.PollIntervalSeconds, svc.Status, nullString(svc.ManifestKey), svc.ManifestManaged, lastSynced,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

// GetByID retrieves a service by ID. Returns nil when it does not exist.
func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*models.Service, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+serviceColumns+" FROM services WHERE id = ?", id)
	svc, err := scanService(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return svc, nil
}

// ListByTeam retrieves all of a team's services, active and inactive.
func (r *ServiceRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.Service, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+serviceColumns+" FROM services WHERE team_id = ? ORDER BY name", teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		svc, err := scanService(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

// UpdateFields writes the manifest-governed field values.
func (r *ServiceRepository) UpdateFields(ctx context.Context, id string, fields models.ManifestFields) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE services SET name = ?, endpoint = ?, health_endpoint = ?,
			poll_interval_seconds = ?, updated_at = ? WHERE id = ?`,
		fields.Name, nullString(fields.Endpoint), nullString(fields.HealthEndpoint),
		fields.PollIntervalSeconds, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update service fields: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return &secondary.NotFoundError{Entity: "service", ID: id}
	}
	return nil
}

// SetStatus activates or deactivates a service.
func (r *ServiceRepository) SetStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE services SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set service status: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return &secondary.NotFoundError{Entity: "service", ID: id}
	}
	return nil
}

// SetManifestState updates the manifest ownership marker and the
// last-synced snapshot.
func (r *ServiceRepository) SetManifestState(ctx context.Context, id string, managed bool, lastSynced *models.ManifestFields) error {
	snapshot, err := marshalFields(lastSynced)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE services SET manifest_managed = ?, manifest_last_synced_values = ?, updated_at = ? WHERE id = ?",
		managed, snapshot, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set manifest state: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return &secondary.NotFoundError{Entity: "service", ID: id}
	}
	return nil
}

// Delete removes a service; its drift flags and dependency edges
// cascade away. Returns false when the service does not exist.
func (r *ServiceRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM services WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete service: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// ReplaceDependencies replaces the service's declared dependency set.
func (r *ServiceRepository) ReplaceDependencies(ctx context.Context, serviceID string, dependsOnIDs []string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM service_dependencies WHERE service_id = ?", serviceID); err != nil {
		return fmt.Errorf("failed to clear dependencies: %w", err)
	}

	for _, depID := range dependsOnIDs {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO service_dependencies (id, service_id, depends_on_service_id) VALUES (?, ?, ?)",
			uuid.NewString(), serviceID, depID)
		if err != nil {
			return fmt.Errorf("failed to insert dependency: %w", err)
		}
	}
	return nil
}

// ListDependencies returns the ids of services this service depends on.
func (r *ServiceRepository) ListDependencies(ctx context.Context, serviceID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT depends_on_service_id FROM service_dependencies WHERE service_id = ? ORDER BY depends_on_service_id",
		serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func marshalFields(fields *models.ManifestFields) (sql.NullString, error) {
	if fields == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal manifest snapshot: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// Ensure ServiceRepository implements the interface
var _ secondary.ServiceRepository = (*ServiceRepository)(nil)
