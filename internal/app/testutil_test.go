// Package app_test exercises the services against the real SQLite
// adapters on an in-memory database, with only the manifest fetcher
// stubbed. The orchestrator's contract (one transaction per run, the
// drift upsert behavior, policy branching) is about how the pieces
// interact, so mocking the repositories away would test very little.
package app_test

import (
	"context"
	"database/sql"
	"testing"

	"go.uber.org/zap"

	"github.com/example/catalogd/internal/adapters/sqlite"
	"github.com/example/catalogd/internal/app"
	"github.com/example/catalogd/internal/db"
	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/primary"
	"github.com/example/catalogd/internal/ports/secondary"
)

// stubFetcher returns canned fetch outcomes.
type stubFetcher struct {
	manifest *models.Manifest
	result   *secondary.ValidationResult
	err      error
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (*models.Manifest, *secondary.ValidationResult, error) {
	return f.manifest, f.result, f.err
}

var _ secondary.ManifestFetcher = (*stubFetcher)(nil)

type fixture struct {
	db      *sql.DB
	repos   secondary.Repositories
	fetcher *stubFetcher

	sync    *app.ManifestSyncServiceImpl
	drift   *app.DriftServiceImpl
	catalog *app.CatalogServiceImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database, err := db.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repos := sqlite.NewRepositories(database)
	txRunner := sqlite.NewTxRunner(database)
	fetcher := &stubFetcher{}

	return &fixture{
		db:      database,
		repos:   repos,
		fetcher: fetcher,
		sync:    app.NewManifestSyncService(repos, txRunner, fetcher, zap.NewNop()),
		drift:   app.NewDriftService(repos.DriftFlags),
		catalog: app.NewCatalogService(repos, txRunner),
	}
}

// seedTeam creates a team through the catalog service.
func (f *fixture) seedTeam(t *testing.T, name string) *models.Team {
	t.Helper()
	team, err := f.catalog.CreateTeam(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}
	return team
}

// configure sets an enabled manifest config for the team.
func (f *fixture) configure(t *testing.T, teamID string, policy models.SyncPolicy) {
	t.Helper()
	_, err := f.sync.SetConfig(context.Background(), primary.SetConfigRequest{
		TeamID:      teamID,
		ManifestURL: "https://example.com/manifest.json",
		Enabled:     true,
		Policy:      policy,
	})
	if err != nil {
		t.Fatalf("failed to set config: %v", err)
	}
}

// serveManifest makes the stub fetcher return a valid manifest with the
// given entries.
func (f *fixture) serveManifest(entries ...models.ManifestEntry) {
	f.fetcher.manifest = &models.Manifest{Version: 1, Services: entries}
	f.fetcher.result = &secondary.ValidationResult{Valid: true, ServiceCount: len(entries)}
	f.fetcher.err = nil
}

// runSync triggers a manual sync and fails the test on error.
func (f *fixture) runSync(t *testing.T, teamID string) *primary.SyncResult {
	t.Helper()
	result, err := f.sync.Sync(context.Background(), primary.SyncRequest{TeamID: teamID})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	return result
}

// serviceByKey finds a team service by manifest key.
func (f *fixture) serviceByKey(t *testing.T, teamID, key string) *models.Service {
	t.Helper()
	services, err := f.repos.Services.ListByTeam(context.Background(), teamID)
	if err != nil {
		t.Fatalf("failed to list services: %v", err)
	}
	for _, svc := range services {
		if svc.ManifestKey == key {
			return svc
		}
	}
	return nil
}

func entry(key, name, endpoint string) models.ManifestEntry {
	return models.ManifestEntry{
		Key:      key,
		Name:     name,
		Endpoint: endpoint,
	}
}
