package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/primary"
	"github.com/example/catalogd/internal/ports/secondary"
)

// recordingSyncService records Sync calls; everything else is inert.
type recordingSyncService struct {
	mu      sync.Mutex
	configs []*primary.ManifestConfig
	calls   []primary.SyncRequest
	synced  chan primary.SyncRequest
}

func newRecordingSyncService(configs ...*primary.ManifestConfig) *recordingSyncService {
	return &recordingSyncService{
		configs: configs,
		synced:  make(chan primary.SyncRequest, 16),
	}
}

func (s *recordingSyncService) Sync(ctx context.Context, req primary.SyncRequest) (*primary.SyncResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	select {
	case s.synced <- req:
	default:
	}
	return &primary.SyncResult{Status: models.SyncStatusSuccess}, nil
}

func (s *recordingSyncService) EnabledConfigs(ctx context.Context) ([]*primary.ManifestConfig, error) {
	return s.configs, nil
}

func (s *recordingSyncService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *recordingSyncService) SetConfig(ctx context.Context, req primary.SetConfigRequest) (*primary.ManifestConfig, error) {
	return nil, nil
}
func (s *recordingSyncService) GetConfig(ctx context.Context, teamID string) (*primary.ManifestConfig, error) {
	return nil, nil
}
func (s *recordingSyncService) RemoveConfig(ctx context.Context, teamID string) (bool, error) {
	return false, nil
}
func (s *recordingSyncService) TestManifest(ctx context.Context, url string) (*secondary.ValidationResult, error) {
	return nil, nil
}
func (s *recordingSyncService) History(ctx context.Context, teamID string, limit, offset int) ([]*primary.HistoryEntry, int, error) {
	return nil, 0, nil
}
func (s *recordingSyncService) PruneHistory(ctx context.Context, olderThan time.Duration) (int, error) {
	return 0, nil
}

var _ primary.ManifestSyncService = (*recordingSyncService)(nil)

func TestSchedulerSyncsEnabledTeams(t *testing.T) {
	svc := newRecordingSyncService(
		&primary.ManifestConfig{TeamID: "team-1", ManifestURL: "https://example.com/a.json"},
		&primary.ManifestConfig{TeamID: "team-2", ManifestURL: "https://example.com/b.json"},
	)
	s := New(svc, time.Hour, zap.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	defer s.Stop()

	// The initial pass covers both teams without waiting for a tick.
	teams := make(map[string]bool)
	for len(teams) < 2 {
		select {
		case req := <-svc.synced:
			if req.Trigger != models.TriggerScheduled {
				t.Errorf("expected scheduled trigger, got %q", req.Trigger)
			}
			teams[req.TeamID] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for initial pass, synced %v", teams)
		}
	}
}

func TestSchedulerStartTwice(t *testing.T) {
	s := New(newRecordingSyncService(), time.Hour, zap.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	defer s.Stop()

	if err := s.Start(context.Background()); err == nil {
		t.Error("expected error starting twice")
	}
}

func TestSchedulerStopWaits(t *testing.T) {
	svc := newRecordingSyncService(
		&primary.ManifestConfig{TeamID: "team-1", ManifestURL: "https://example.com/a.json"},
	)
	s := New(svc, time.Hour, zap.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	<-svc.synced
	s.Stop()

	// No further runs after Stop returns.
	before := svc.callCount()
	time.Sleep(50 * time.Millisecond)
	if after := svc.callCount(); after != before {
		t.Errorf("sync ran after stop: %d -> %d", before, after)
	}
}

func TestSchedulerWatchesFileManifests(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, []byte(`{"version":1,"services":[]}`), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	svc := newRecordingSyncService(
		&primary.ManifestConfig{TeamID: "team-1", ManifestURL: "file://" + path},
	)
	s := New(svc, time.Hour, zap.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	defer s.Stop()

	// Drain the initial pass.
	select {
	case <-svc.synced:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial pass")
	}

	if err := os.WriteFile(path, []byte(`{"version":1,"services":[{"key":"a","name":"A"}]}`), 0644); err != nil {
		t.Fatalf("failed to rewrite manifest: %v", err)
	}

	select {
	case req := <-svc.synced:
		if req.TeamID != "team-1" {
			t.Errorf("expected team-1, got %s", req.TeamID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for file-change sync")
	}
}
