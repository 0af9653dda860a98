package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/secondary"
)

// UserRepository implements secondary.UserRepository with SQLite.
type UserRepository struct {
	db Querier
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, display_name, email) VALUES (?, ?, ?)",
		user.ID, user.DisplayName, nullString(user.Email))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID. Returns nil when it does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var email sql.NullString
	user := &models.User{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, display_name, email, created_at FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.DisplayName, &email, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Email = email.String
	return user, nil
}

// List retrieves all users ordered by display name.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, display_name, email, created_at FROM users ORDER BY display_name")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var email sql.NullString
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.DisplayName, &email, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Email = email.String
		users = append(users, user)
	}
	return users, rows.Err()
}

// Ensure UserRepository implements the interface
var _ secondary.UserRepository = (*UserRepository)(nil)
