package app

import (
	"context"
	"time"

	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/primary"
	"github.com/example/catalogd/internal/ports/secondary"
)

// DriftServiceImpl implements primary.DriftService, the human review
// workflow over drift flags.
type DriftServiceImpl struct {
	driftRepo secondary.DriftFlagRepository
}

// NewDriftService creates a new DriftService with injected dependencies.
func NewDriftService(driftRepo secondary.DriftFlagRepository) *DriftServiceImpl {
	return &DriftServiceImpl{driftRepo: driftRepo}
}

// ListFlags lists a team's drift flags with optional filters.
func (s *DriftServiceImpl) ListFlags(ctx context.Context, teamID string, filters primary.DriftFilters) ([]*primary.DriftFlag, int, error) {
	records, total, err := s.driftRepo.ListByTeam(ctx, teamID, secondary.DriftFlagFilters{
		Status:    filters.Status,
		DriftType: filters.DriftType,
		ServiceID: filters.ServiceID,
		Limit:     filters.Limit,
		Offset:    filters.Offset,
	})
	if err != nil {
		return nil, 0, err
	}

	flags := make([]*primary.DriftFlag, len(records))
	for i, rec := range records {
		flags[i] = recordToFlag(rec)
	}
	return flags, total, nil
}

// GetFlag retrieves one flag, or nil when it does not exist.
func (s *DriftServiceImpl) GetFlag(ctx context.Context, id string) (*primary.DriftFlag, error) {
	rec, err := s.driftRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return recordToFlag(rec), nil
}

// CountFlags summarizes a team's review queue.
func (s *DriftServiceImpl) CountFlags(ctx context.Context, teamID string) (*primary.DriftCounts, error) {
	counts, err := s.driftRepo.CountByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return &primary.DriftCounts{
		Pending:            counts.Pending,
		Dismissed:          counts.Dismissed,
		FieldChangePending: counts.FieldChangePending,
		RemovalPending:     counts.RemovalPending,
	}, nil
}

// Accept marks a flag accepted (terminal).
func (s *DriftServiceImpl) Accept(ctx context.Context, id, resolvedBy string) (bool, error) {
	return s.driftRepo.Resolve(ctx, id, models.DriftStatusAccepted, resolvedBy)
}

// Dismiss marks a pending flag dismissed.
func (s *DriftServiceImpl) Dismiss(ctx context.Context, id, resolvedBy string) (bool, error) {
	return s.driftRepo.Resolve(ctx, id, models.DriftStatusDismissed, resolvedBy)
}

// Reopen returns a dismissed flag to pending.
func (s *DriftServiceImpl) Reopen(ctx context.Context, id string) (bool, error) {
	return s.driftRepo.Reopen(ctx, id)
}

// BulkAccept accepts each listed flag, skipping illegal ones, and
// returns how many changed.
func (s *DriftServiceImpl) BulkAccept(ctx context.Context, ids []string, resolvedBy string) (int, error) {
	return s.driftRepo.BulkResolve(ctx, ids, models.DriftStatusAccepted, resolvedBy)
}

// BulkDismiss dismisses each listed flag, skipping illegal ones, and
// returns how many changed.
func (s *DriftServiceImpl) BulkDismiss(ctx context.Context, ids []string, resolvedBy string) (int, error) {
	return s.driftRepo.BulkResolve(ctx, ids, models.DriftStatusDismissed, resolvedBy)
}

// PruneResolved deletes terminal flags older than the window. Pending
// and dismissed flags are kept whatever their age.
func (s *DriftServiceImpl) PruneResolved(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	return s.driftRepo.DeleteOlderThan(ctx, cutoff, []string{models.DriftStatusAccepted, models.DriftStatusResolved})
}

func recordToFlag(rec *secondary.DriftFlagRecord) *primary.DriftFlag {
	return &primary.DriftFlag{
		ID:                 rec.ID,
		TeamID:             rec.TeamID,
		ServiceID:          rec.ServiceID,
		ServiceName:        rec.ServiceName,
		ServiceManifestKey: rec.ServiceManifestKey,
		DriftType:          rec.DriftType,
		FieldName:          rec.FieldName,
		ManifestValue:      rec.ManifestValue,
		CurrentValue:       rec.CurrentValue,
		Status:             rec.Status,
		FirstDetected:      rec.FirstDetected,
		LastDetected:       rec.LastDetected,
		ResolvedAt:         rec.ResolvedAt,
		ResolvedBy:         rec.ResolvedBy,
		ResolvedByName:     rec.ResolvedByName,
		SyncHistoryID:      rec.SyncHistoryID,
	}
}

// Ensure DriftServiceImpl implements the interface
var _ primary.DriftService = (*DriftServiceImpl)(nil)
