package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/secondary"
)

// TeamRepository implements secondary.TeamRepository with SQLite.
type TeamRepository struct {
	db Querier
}

// NewTeamRepository creates a new SQLite team repository.
func NewTeamRepository(db Querier) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create persists a new team.
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO teams (id, name) VALUES (?, ?)", team.ID, team.Name)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

// GetByID retrieves a team by ID. Returns nil when it does not exist.
func (r *TeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	team := &models.Team{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM teams WHERE id = ?", id).
		Scan(&team.ID, &team.Name, &team.CreatedAt, &team.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// GetByName retrieves a team by name. Returns nil when it does not
// exist.
func (r *TeamRepository) GetByName(ctx context.Context, name string) (*models.Team, error) {
	team := &models.Team{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM teams WHERE name = ?", name).
		Scan(&team.ID, &team.Name, &team.CreatedAt, &team.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// List retrieves all teams ordered by name.
func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM teams ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		if err := rows.Scan(&team.ID, &team.Name, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// Delete removes a team; its services, config, flags and history
// cascade away. Returns false when the team does not exist.
func (r *TeamRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM teams WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete team: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// Ensure TeamRepository implements the interface
var _ secondary.TeamRepository = (*TeamRepository)(nil)
