// Package wire is the composition root: it builds the service graph
// explicitly and hands the caller an App that owns every resource it
// opened. No package-level singletons; construct one App per process
// (or per test) and close it when done.
package wire

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/catalogd/internal/adapters/manifesthttp"
	"github.com/example/catalogd/internal/adapters/sqlite"
	"github.com/example/catalogd/internal/app"
	"github.com/example/catalogd/internal/config"
	"github.com/example/catalogd/internal/db"
	"github.com/example/catalogd/internal/ports/primary"
	"github.com/example/catalogd/internal/ports/secondary"
	"github.com/example/catalogd/internal/scheduler"
)

// App bundles the wired services and the resources behind them.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	ManifestSync primary.ManifestSyncService
	Drift        primary.DriftService
	Catalog      primary.CatalogService

	database *sql.DB
}

// New opens the database at the configured path and wires the full
// service graph.
func New(cfg *config.Config) (*App, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		logger.Sync()
		return nil, err
	}

	return build(cfg, database, logger), nil
}

// NewInMemory wires the service graph over a fresh in-memory database.
// Used by tests and by `manifest test` style dry runs.
func NewInMemory(cfg *config.Config) (*App, error) {
	database, err := db.OpenInMemory()
	if err != nil {
		return nil, err
	}
	return build(cfg, database, zap.NewNop()), nil
}

func build(cfg *config.Config, database *sql.DB, logger *zap.Logger) *App {
	repos := sqlite.NewRepositories(database)
	txRunner := sqlite.NewTxRunner(database)
	fetcher := manifesthttp.NewFetcher(cfg.FetchTimeout())

	return &App{
		Config:       cfg,
		Logger:       logger,
		ManifestSync: app.NewManifestSyncService(repos, txRunner, fetcher, logger),
		Drift:        app.NewDriftService(repos.DriftFlags),
		Catalog:      app.NewCatalogService(repos, txRunner),
		database:     database,
	}
}

// NewScheduler builds the background sync scheduler over this App's
// services.
func (a *App) NewScheduler() *scheduler.Scheduler {
	return a.NewSchedulerWithInterval(a.Config.SyncInterval())
}

// NewSchedulerWithInterval builds a scheduler with an explicit interval,
// overriding the configured one.
func (a *App) NewSchedulerWithInterval(interval time.Duration) *scheduler.Scheduler {
	return scheduler.New(a.ManifestSync, interval, a.Logger)
}

// Repositories exposes the repository bundle for callers that need to
// go below the service layer (currently only tests).
func (a *App) Repositories() secondary.Repositories {
	return sqlite.NewRepositories(a.database)
}

// Close releases the database and flushes the logger.
func (a *App) Close() error {
	a.Logger.Sync()
	return a.database.Close()
}
