// Package scheduler runs manifest syncs in the background: periodically
// for every enabled team config, and immediately when a file-based
// manifest changes on disk.
package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/primary"
)

// Scheduler drives scheduled sync runs for enabled manifest configs.
type Scheduler struct {
	syncService primary.ManifestSyncService
	interval    time.Duration
	logger      *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// New creates a scheduler that syncs every enabled team at the given
// interval.
func New(syncService primary.ManifestSyncService, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		syncService: syncService,
		interval:    interval,
		logger:      logger,
	}
}

// Start begins the background loops. It returns once they are running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.mu.Unlock()

	s.logger.Info("starting sync scheduler", zap.Duration("interval", s.interval))

	s.wg.Add(1)
	go s.run()

	if err := s.startWatcher(); err != nil {
		// File watching is best-effort; the periodic loop still covers
		// every config.
		s.logger.Warn("file watcher unavailable", zap.Error(err))
	}

	return nil
}

// Stop halts the loops and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.logger.Info("stopping sync scheduler")
	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run an initial pass so a fresh process converges immediately.
	s.syncAll()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.syncAll()
		}
	}
}

// syncAll runs one scheduled sync for every enabled config. One team's
// failure never blocks the rest.
func (s *Scheduler) syncAll() {
	configs, err := s.syncService.EnabledConfigs(s.ctx)
	if err != nil {
		s.logger.Error("failed to list enabled configs", zap.Error(err))
		return
	}
	if len(configs) == 0 {
		s.logger.Debug("no enabled manifest configs")
		return
	}

	for _, cfg := range configs {
		s.syncTeam(cfg.TeamID)
	}
}

func (s *Scheduler) syncTeam(teamID string) {
	result, err := s.syncService.Sync(s.ctx, primary.SyncRequest{
		TeamID:  teamID,
		Trigger: models.TriggerScheduled,
	})
	if err != nil {
		s.logger.Error("scheduled sync failed",
			zap.String("team_id", teamID),
			zap.Error(err))
		return
	}
	if result.Status != models.SyncStatusSuccess {
		s.logger.Warn("scheduled sync finished with problems",
			zap.String("team_id", teamID),
			zap.String("status", result.Status),
			zap.Strings("errors", result.Errors))
	}
}

// startWatcher watches the directories behind file:// manifest URLs and
// syncs the owning team as soon as its manifest file changes.
func (s *Scheduler) startWatcher() error {
	configs, err := s.syncService.EnabledConfigs(s.ctx)
	if err != nil {
		return err
	}

	// manifest file path -> team id
	watched := make(map[string]string)
	dirs := make(map[string]bool)
	for _, cfg := range configs {
		if !strings.HasPrefix(cfg.ManifestURL, "file://") {
			continue
		}
		path := filepath.Clean(strings.TrimPrefix(cfg.ManifestURL, "file://"))
		watched[path] = cfg.TeamID
		dirs[filepath.Dir(path)] = true
	}
	if len(watched) == 0 {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for dir := range dirs {
		// Watch the directory, not the file: editors replace files on
		// save and the inode-level watch would go stale.
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return err
		}
	}

	s.logger.Info("watching manifest files", zap.Int("count", len(watched)))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer watcher.Close()

		for {
			select {
			case <-s.ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				teamID, ok := watched[filepath.Clean(event.Name)]
				if !ok {
					continue
				}
				s.logger.Info("manifest file changed",
					zap.String("path", event.Name),
					zap.String("team_id", teamID))
				s.syncTeam(teamID)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("manifest watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
