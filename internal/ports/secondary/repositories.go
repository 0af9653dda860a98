package secondary

import (
	"context"
	"time"

	"github.com/example/catalogd/internal/models"
)

// DriftFlagRepository persists drift flags and owns their state
// machine. Illegal transitions and missing rows are reported through
// return values (false / zero counts), never as errors; only broken
// referential preconditions (for the upserts) error.
type DriftFlagRepository interface {
	Create(ctx context.Context, rec *DriftFlagRecord) error
	GetByID(ctx context.Context, id string) (*DriftFlagRecord, error)
	ListByTeam(ctx context.Context, teamID string, filters DriftFlagFilters) ([]*DriftFlagRecord, int, error)
	ListActiveByService(ctx context.Context, serviceID string) ([]*DriftFlagRecord, error)
	GetActiveFieldFlag(ctx context.Context, serviceID, field string) (*DriftFlagRecord, error)
	GetActiveRemovalFlag(ctx context.Context, serviceID string) (*DriftFlagRecord, error)
	CountByTeam(ctx context.Context, teamID string) (*DriftFlagCounts, error)

	Resolve(ctx context.Context, id, newStatus, resolvedBy string) (bool, error)
	Reopen(ctx context.Context, id string) (bool, error)
	UpdateDetection(ctx context.Context, id, manifestValue, currentValue string) (bool, error)
	TouchLastDetected(ctx context.Context, id string) (bool, error)
	BulkResolve(ctx context.Context, ids []string, newStatus, resolvedBy string) (int, error)
	ResolveAllForService(ctx context.Context, serviceID string) (int, error)
	ResolveAllForTeam(ctx context.Context, teamID string) (int, error)

	UpsertFieldDrift(ctx context.Context, serviceID, field, manifestValue, currentValue, syncHistoryID string) (*DriftFlagRecord, string, error)
	UpsertRemovalDrift(ctx context.Context, serviceID, syncHistoryID string) (*DriftFlagRecord, string, error)

	DeleteOlderThan(ctx context.Context, cutoff time.Time, statuses []string) (int, error)
}

// ServiceRepository persists catalog services and their declared
// dependencies.
type ServiceRepository interface {
	Create(ctx context.Context, svc *models.Service) error
	GetByID(ctx context.Context, id string) (*models.Service, error)
	ListByTeam(ctx context.Context, teamID string) ([]*models.Service, error)
	UpdateFields(ctx context.Context, id string, fields models.ManifestFields) error
	SetStatus(ctx context.Context, id, status string) error
	SetManifestState(ctx context.Context, id string, managed bool, lastSynced *models.ManifestFields) error
	Delete(ctx context.Context, id string) (bool, error)
	ReplaceDependencies(ctx context.Context, serviceID string, dependsOnIDs []string) error
	ListDependencies(ctx context.Context, serviceID string) ([]string, error)
}

// ManifestConfigRepository persists per-team manifest configuration.
type ManifestConfigRepository interface {
	Upsert(ctx context.Context, rec *ManifestConfigRecord) error
	GetByTeam(ctx context.Context, teamID string) (*ManifestConfigRecord, error)
	ListEnabled(ctx context.Context) ([]*ManifestConfigRecord, error)
	Delete(ctx context.Context, teamID string) (bool, error)
	RecordSyncResult(ctx context.Context, teamID, status, errMsg string, summary *models.SyncSummary, at time.Time) error
}

// SyncHistoryRepository is the append-only sync run log.
type SyncHistoryRepository interface {
	Append(ctx context.Context, rec *SyncHistoryRecord) error
	ListByTeam(ctx context.Context, teamID string, limit, offset int) ([]*SyncHistoryRecord, int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// TeamRepository persists teams.
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	GetByName(ctx context.Context, name string) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

// Repositories bundles every repository bound to one database handle or
// transaction.
type Repositories struct {
	DriftFlags      DriftFlagRepository
	Services        ServiceRepository
	ManifestConfigs ManifestConfigRepository
	SyncHistory     SyncHistoryRepository
	Teams           TeamRepository
	Users           UserRepository
}

// TxRunner executes fn against transaction-bound repositories. The
// orchestrator uses it to make a whole sync run atomic.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(repos Repositories) error) error
}

// ManifestFetcher retrieves and validates a manifest document. A
// network or HTTP-level failure is returned as an error; a document
// that fetched but failed schema validation returns a nil manifest and
// a result with Valid=false.
type ManifestFetcher interface {
	Fetch(ctx context.Context, url string) (*models.Manifest, *ValidationResult, error)
}
