package primary

import (
	"context"
	"time"
)

// DriftFlag is one drift record as shown to callers.
type DriftFlag struct {
	ID                 string
	TeamID             string
	ServiceID          string
	ServiceName        string
	ServiceManifestKey string
	DriftType          string
	FieldName          string
	ManifestValue      string
	CurrentValue       string
	Status             string
	FirstDetected      time.Time
	LastDetected       time.Time
	ResolvedAt         *time.Time
	ResolvedBy         string
	ResolvedByName     string
	SyncHistoryID      string
}

// DriftFilters narrows drift flag listings.
type DriftFilters struct {
	Status    string
	DriftType string
	ServiceID string
	Limit     int
	Offset    int
}

// DriftCounts summarizes a team's drift review queue.
type DriftCounts struct {
	Pending            int
	Dismissed          int
	FieldChangePending int
	RemovalPending     int
}

// DriftService is the review workflow's driving port. Accept, Dismiss
// and Reopen return false for unknown flags and illegal transitions;
// callers treat that as "nothing to do", not as a failure.
type DriftService interface {
	ListFlags(ctx context.Context, teamID string, filters DriftFilters) ([]*DriftFlag, int, error)
	GetFlag(ctx context.Context, id string) (*DriftFlag, error)
	CountFlags(ctx context.Context, teamID string) (*DriftCounts, error)

	Accept(ctx context.Context, id, resolvedBy string) (bool, error)
	Dismiss(ctx context.Context, id, resolvedBy string) (bool, error)
	Reopen(ctx context.Context, id string) (bool, error)
	BulkAccept(ctx context.Context, ids []string, resolvedBy string) (int, error)
	BulkDismiss(ctx context.Context, ids []string, resolvedBy string) (int, error)

	// PruneResolved deletes accepted/resolved flags older than the
	// window. Active flags are never deleted regardless of age.
	PruneResolved(ctx context.Context, olderThan time.Duration) (int, error)
}
