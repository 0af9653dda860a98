package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/primary"
	"github.com/example/catalogd/internal/ports/secondary"
)

// CatalogServiceImpl implements primary.CatalogService.
type CatalogServiceImpl struct {
	repos    secondary.Repositories
	txRunner secondary.TxRunner
}

// NewCatalogService creates a new CatalogService with injected dependencies.
func NewCatalogService(repos secondary.Repositories, txRunner secondary.TxRunner) *CatalogServiceImpl {
	return &CatalogServiceImpl{repos: repos, txRunner: txRunner}
}

// CreateTeam creates a team with a unique name.
func (s *CatalogServiceImpl) CreateTeam(ctx context.Context, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("team name is required")
	}
	existing, err := s.repos.Teams.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("team %q already exists", name)
	}

	team := &models.Team{Name: name}
	if err := s.repos.Teams.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

// GetTeam resolves a team by ID first, then by name.
func (s *CatalogServiceImpl) GetTeam(ctx context.Context, idOrName string) (*models.Team, error) {
	team, err := s.repos.Teams.GetByID(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	if team != nil {
		return team, nil
	}
	team, err = s.repos.Teams.GetByName(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, &secondary.NotFoundError{Entity: "team", ID: idOrName}
	}
	return team, nil
}

// ListTeams returns all teams.
func (s *CatalogServiceImpl) ListTeams(ctx context.Context) ([]*models.Team, error) {
	return s.repos.Teams.List(ctx)
}

// CreateUser creates a user.
func (s *CatalogServiceImpl) CreateUser(ctx context.Context, displayName, email string) (*models.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, fmt.Errorf("display name is required")
	}
	user := &models.User{DisplayName: displayName, Email: strings.TrimSpace(email)}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// ListUsers returns all users.
func (s *CatalogServiceImpl) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repos.Users.List(ctx)
}

// ListServices returns a team's services.
func (s *CatalogServiceImpl) ListServices(ctx context.Context, teamID string) ([]*models.Service, error) {
	return s.repos.Services.ListByTeam(ctx, teamID)
}

// GetService retrieves one service.
func (s *CatalogServiceImpl) GetService(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.repos.Services.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, &secondary.NotFoundError{Entity: "service", ID: id}
	}
	return svc, nil
}

// DeleteService removes a service. Its active drift flags are accepted
// first so the review queue never points at a missing row; dependency
// edges cascade away with the service.
func (s *CatalogServiceImpl) DeleteService(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := s.txRunner.RunInTx(ctx, func(repos secondary.Repositories) error {
		if _, err := repos.DriftFlags.ResolveAllForService(ctx, id); err != nil {
			return err
		}
		var err error
		deleted, err = repos.Services.Delete(ctx, id)
		return err
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// Ensure CatalogServiceImpl implements the interface
var _ primary.CatalogService = (*CatalogServiceImpl)(nil)
