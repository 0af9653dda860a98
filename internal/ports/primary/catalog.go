package primary

import (
	"context"

	"github.com/example/catalogd/internal/models"
)

// CatalogService manages teams, users and services directly, outside
// any manifest sync. Deleting a service accepts its active drift flags
// before the row (and its dependency edges) cascade away.
type CatalogService interface {
	CreateTeam(ctx context.Context, name string) (*models.Team, error)
	GetTeam(ctx context.Context, idOrName string) (*models.Team, error)
	ListTeams(ctx context.Context) ([]*models.Team, error)

	CreateUser(ctx context.Context, displayName, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)

	ListServices(ctx context.Context, teamID string) ([]*models.Service, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	DeleteService(ctx context.Context, id string) (bool, error)
}
