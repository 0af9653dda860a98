// Package primary defines the driving ports: the service interfaces the
// CLI and scheduler call, plus their request/response types.
package primary

import (
	"context"
	"time"

	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/secondary"
)

// ManifestConfig is a team's manifest configuration as shown to callers.
type ManifestConfig struct {
	TeamID          string
	ManifestURL     string
	Enabled         bool
	Policy          models.SyncPolicy
	LastSyncStatus  string
	LastSyncError   string
	LastSyncSummary *models.SyncSummary
	LastSyncAt      *time.Time
}

// SetConfigRequest creates or updates a team's manifest configuration.
type SetConfigRequest struct {
	TeamID      string
	ManifestURL string
	Enabled     bool
	Policy      models.SyncPolicy
}

// SyncRequest triggers one sync run.
type SyncRequest struct {
	TeamID      string
	Trigger     string // models.TriggerManual or models.TriggerScheduled
	TriggeredBy string // user id, empty for scheduled runs
}

// SyncResult is the full outcome of one sync run.
type SyncResult struct {
	HistoryID string
	Status    string
	Summary   models.SyncSummary
	Errors    []string
	Warnings  []string
	Duration  time.Duration
}

// HistoryEntry is one sync run as shown to callers.
type HistoryEntry struct {
	ID          string
	TriggerType string
	TriggeredBy string
	ManifestURL string
	Status      string
	Summary     *models.SyncSummary
	Errors      []string
	Warnings    []string
	Duration    time.Duration
	CreatedAt   time.Time
}

// ManifestSyncService is the sync engine's driving port.
type ManifestSyncService interface {
	SetConfig(ctx context.Context, req SetConfigRequest) (*ManifestConfig, error)
	GetConfig(ctx context.Context, teamID string) (*ManifestConfig, error)
	// RemoveConfig deletes the config and bulk-accepts every active
	// drift flag for the team. Previously created services survive.
	RemoveConfig(ctx context.Context, teamID string) (bool, error)

	// TestManifest fetches and validates without committing anything.
	TestManifest(ctx context.Context, url string) (*secondary.ValidationResult, error)

	Sync(ctx context.Context, req SyncRequest) (*SyncResult, error)

	History(ctx context.Context, teamID string, limit, offset int) ([]*HistoryEntry, int, error)
	PruneHistory(ctx context.Context, olderThan time.Duration) (int, error)

	// EnabledConfigs lists teams the scheduler should sync.
	EnabledConfigs(ctx context.Context) ([]*ManifestConfig, error)
}
