// Package app implements the driving-port services by composing the
// repositories, the pure reconciliation core, and the manifest fetcher.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/primary"
	"github.com/example/catalogd/internal/ports/secondary"
)

// ManifestSyncServiceImpl implements primary.ManifestSyncService. Each
// sync run executes inside one transaction: either the whole run
// (service mutations, drift flags, history row, config snapshot)
// commits, or none of it does.
type ManifestSyncServiceImpl struct {
	repos    secondary.Repositories
	txRunner secondary.TxRunner
	fetcher  secondary.ManifestFetcher
	logger   *zap.Logger

	// Per-team single-flight: overlapping runs for one team would be
	// safe at the row level thanks to the upsert contract, but there
	// is no reason to let them race within one process.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManifestSyncService creates a new ManifestSyncService with
// injected dependencies.
func NewManifestSyncService(repos secondary.Repositories, txRunner secondary.TxRunner, fetcher secondary.ManifestFetcher, logger *zap.Logger) *ManifestSyncServiceImpl {
	return &ManifestSyncServiceImpl{
		repos:    repos,
		txRunner: txRunner,
		fetcher:  fetcher,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// SetConfig creates or updates a team's manifest configuration.
func (s *ManifestSyncServiceImpl) SetConfig(ctx context.Context, req primary.SetConfigRequest) (*primary.ManifestConfig, error) {
	team, err := s.repos.Teams.GetByID(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, &secondary.NotFoundError{Entity: "team", ID: req.TeamID}
	}
	if req.ManifestURL == "" {
		return nil, fmt.Errorf("manifest URL is required")
	}
	if err := validatePolicy(req.Policy); err != nil {
		return nil, err
	}

	err = s.repos.ManifestConfigs.Upsert(ctx, &secondary.ManifestConfigRecord{
		TeamID:      req.TeamID,
		ManifestURL: req.ManifestURL,
		Enabled:     req.Enabled,
		Policy:      req.Policy,
	})
	if err != nil {
		return nil, err
	}
	return s.GetConfig(ctx, req.TeamID)
}

// GetConfig retrieves a team's manifest configuration, or nil when the
// team has none.
func (s *ManifestSyncServiceImpl) GetConfig(ctx context.Context, teamID string) (*primary.ManifestConfig, error) {
	rec, err := s.repos.ManifestConfigs.GetByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return configToDTO(rec), nil
}

// RemoveConfig deletes the team's config and accepts every active
// drift flag for the team. Services created by earlier syncs survive.
func (s *ManifestSyncServiceImpl) RemoveConfig(ctx context.Context, teamID string) (bool, error) {
	var removed bool
	err := s.txRunner.RunInTx(ctx, func(repos secondary.Repositories) error {
		ok, err := repos.ManifestConfigs.Delete(ctx, teamID)
		if err != nil {
			return err
		}
		removed = ok
		if !ok {
			return nil
		}
		_, err = repos.DriftFlags.ResolveAllForTeam(ctx, teamID)
		return err
	})
	return removed, err
}

// TestManifest fetches and validates a manifest without committing any
// sync.
func (s *ManifestSyncServiceImpl) TestManifest(ctx context.Context, url string) (*secondary.ValidationResult, error) {
	_, result, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Sync executes one reconciliation run for a team.
func (s *ManifestSyncServiceImpl) Sync(ctx context.Context, req primary.SyncRequest) (*primary.SyncResult, error) {
	lock := s.teamLock(req.TeamID)
	lock.Lock()
	defer lock.Unlock()

	cfg, err := s.repos.ManifestConfigs.GetByTeam(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &secondary.NotFoundError{Entity: "manifest config", ID: req.TeamID}
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("manifest sync is disabled for team %s", req.TeamID)
	}

	trigger := req.Trigger
	if trigger == "" {
		trigger = models.TriggerManual
	}
	started := time.Now()

	manifest, validation, err := s.fetcher.Fetch(ctx, cfg.ManifestURL)
	if err != nil {
		// Fetch-stage failure: record it and leave all prior state
		// untouched.
		return s.recordFailure(ctx, req, cfg, started, trigger, []string{err.Error()}, nil)
	}
	if !validation.Valid {
		errs := make([]string, 0, len(validation.Errors))
		for _, issue := range validation.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
		}
		return s.recordFailure(ctx, req, cfg, started, trigger, errs, validation)
	}

	historyID := uuid.NewString()
	run := &syncRun{
		teamID:    req.TeamID,
		historyID: historyID,
		policy:    cfg.Policy,
	}
	for _, issue := range validation.Warnings {
		run.warnings = append(run.warnings, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
	}

	err = s.txRunner.RunInTx(ctx, func(repos secondary.Repositories) error {
		if err := run.apply(ctx, repos, manifest); err != nil {
			return err
		}

		status := models.SyncStatusSuccess
		if len(run.errors) > 0 {
			status = models.SyncStatusPartial
		}
		run.status = status
		duration := time.Since(started)

		if err := repos.SyncHistory.Append(ctx, &secondary.SyncHistoryRecord{
			ID:          historyID,
			TeamID:      req.TeamID,
			TriggerType: trigger,
			TriggeredBy: req.TriggeredBy,
			ManifestURL: cfg.ManifestURL,
			Status:      status,
			Summary:     &run.summary,
			Errors:      run.errors,
			Warnings:    run.warnings,
			Duration:    duration,
		}); err != nil {
			return err
		}

		errMsg := ""
		if len(run.errors) > 0 {
			errMsg = run.errors[0]
		}
		return repos.ManifestConfigs.RecordSyncResult(ctx, req.TeamID, status, errMsg, &run.summary, time.Now())
	})
	if err != nil {
		// Nothing from the transaction is committed; record the
		// failure on its own so the run is still visible in history.
		return s.recordFailure(ctx, req, cfg, started, trigger, []string{err.Error()}, validation)
	}

	result := &primary.SyncResult{
		HistoryID: historyID,
		Status:    run.status,
		Summary:   run.summary,
		Errors:    run.errors,
		Warnings:  run.warnings,
		Duration:  time.Since(started),
	}

	s.logger.Info("manifest sync completed",
		zap.String("team_id", req.TeamID),
		zap.String("status", result.Status),
		zap.Int("created", run.summary.Created),
		zap.Int("updated", run.summary.Updated),
		zap.Int("unchanged", run.summary.Unchanged),
		zap.Int("drift_flagged", run.summary.DriftFlagged),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// History returns a page of the team's sync log, newest first.
func (s *ManifestSyncServiceImpl) History(ctx context.Context, teamID string, limit, offset int) ([]*primary.HistoryEntry, int, error) {
	records, total, err := s.repos.SyncHistory.ListByTeam(ctx, teamID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	entries := make([]*primary.HistoryEntry, len(records))
	for i, rec := range records {
		entries[i] = &primary.HistoryEntry{
			ID:          rec.ID,
			TriggerType: rec.TriggerType,
			TriggeredBy: rec.TriggeredBy,
			ManifestURL: rec.ManifestURL,
			Status:      rec.Status,
			Summary:     rec.Summary,
			Errors:      rec.Errors,
			Warnings:    rec.Warnings,
			Duration:    rec.Duration,
			CreatedAt:   rec.CreatedAt,
		}
	}
	return entries, total, nil
}

// PruneHistory deletes history entries older than the window.
func (s *ManifestSyncServiceImpl) PruneHistory(ctx context.Context, olderThan time.Duration) (int, error) {
	return s.repos.SyncHistory.DeleteOlderThan(ctx, time.Now().Add(-olderThan))
}

// EnabledConfigs lists every enabled manifest config, for the scheduler.
func (s *ManifestSyncServiceImpl) EnabledConfigs(ctx context.Context) ([]*primary.ManifestConfig, error) {
	records, err := s.repos.ManifestConfigs.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	configs := make([]*primary.ManifestConfig, len(records))
	for i, rec := range records {
		configs[i] = configToDTO(rec)
	}
	return configs, nil
}

// recordFailure writes a failed history entry and config snapshot in
// its own transaction and returns the failed result.
func (s *ManifestSyncServiceImpl) recordFailure(ctx context.Context, req primary.SyncRequest, cfg *secondary.ManifestConfigRecord, started time.Time, trigger string, errs []string, validation *secondary.ValidationResult) (*primary.SyncResult, error) {
	duration := time.Since(started)
	historyID := uuid.NewString()

	var warnings []string
	if validation != nil {
		for _, issue := range validation.Warnings {
			warnings = append(warnings, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
		}
	}

	txErr := s.txRunner.RunInTx(ctx, func(repos secondary.Repositories) error {
		if err := repos.SyncHistory.Append(ctx, &secondary.SyncHistoryRecord{
			ID:          historyID,
			TeamID:      req.TeamID,
			TriggerType: trigger,
			TriggeredBy: req.TriggeredBy,
			ManifestURL: cfg.ManifestURL,
			Status:      models.SyncStatusFailed,
			Errors:      errs,
			Warnings:    warnings,
			Duration:    duration,
		}); err != nil {
			return err
		}
		errMsg := ""
		if len(errs) > 0 {
			errMsg = errs[0]
		}
		return repos.ManifestConfigs.RecordSyncResult(ctx, req.TeamID, models.SyncStatusFailed, errMsg, nil, time.Now())
	})
	if txErr != nil {
		return nil, fmt.Errorf("sync failed and could not be recorded: %w", txErr)
	}

	s.logger.Warn("manifest sync failed",
		zap.String("team_id", req.TeamID),
		zap.Strings("errors", errs))

	return &primary.SyncResult{
		HistoryID: historyID,
		Status:    models.SyncStatusFailed,
		Errors:    errs,
		Warnings:  warnings,
		Duration:  duration,
	}, nil
}

func (s *ManifestSyncServiceImpl) teamLock(teamID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[teamID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[teamID] = lock
	}
	return lock
}

func configToDTO(rec *secondary.ManifestConfigRecord) *primary.ManifestConfig {
	return &primary.ManifestConfig{
		TeamID:          rec.TeamID,
		ManifestURL:     rec.ManifestURL,
		Enabled:         rec.Enabled,
		Policy:          rec.Policy,
		LastSyncStatus:  rec.LastSyncStatus,
		LastSyncError:   rec.LastSyncError,
		LastSyncSummary: rec.LastSyncSummary,
		LastSyncAt:      rec.LastSyncAt,
	}
}

func validatePolicy(p models.SyncPolicy) error {
	switch p.OnFieldDrift {
	case models.FieldPolicyFlag, models.FieldPolicyManifestWins, models.FieldPolicyLocalWins:
	default:
		return fmt.Errorf("invalid field drift policy %q", p.OnFieldDrift)
	}
	switch p.OnRemoval {
	case models.RemovalPolicyFlag, models.RemovalPolicyDeactivate, models.RemovalPolicyDelete:
	default:
		return fmt.Errorf("invalid removal policy %q", p.OnRemoval)
	}
	return nil
}

// Ensure ManifestSyncServiceImpl implements the interface
var _ primary.ManifestSyncService = (*ManifestSyncServiceImpl)(nil)
