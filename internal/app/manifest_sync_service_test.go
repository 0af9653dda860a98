package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/primary"
	"github.com/example/catalogd/internal/ports/secondary"
)

func TestSetConfigUnknownTeam(t *testing.T) {
	f := newFixture(t)

	_, err := f.sync.SetConfig(context.Background(), primary.SetConfigRequest{
		TeamID:      "nope",
		ManifestURL: "https://example.com/manifest.json",
		Policy:      models.DefaultSyncPolicy(),
	})
	if !secondary.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestSetConfigRejectsInvalidPolicy(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")

	_, err := f.sync.SetConfig(context.Background(), primary.SetConfigRequest{
		TeamID:      team.ID,
		ManifestURL: "https://example.com/manifest.json",
		Policy:      models.SyncPolicy{OnFieldDrift: "yolo", OnRemoval: models.RemovalPolicyFlag},
	})
	if err == nil {
		t.Error("expected error for invalid field drift policy")
	}

	_, err = f.sync.SetConfig(context.Background(), primary.SetConfigRequest{
		TeamID:      team.ID,
		ManifestURL: "https://example.com/manifest.json",
		Policy:      models.SyncPolicy{OnFieldDrift: models.FieldPolicyFlag, OnRemoval: "shrug"},
	})
	if err == nil {
		t.Error("expected error for invalid removal policy")
	}
}

func TestSyncWithoutConfig(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")

	_, err := f.sync.Sync(context.Background(), primary.SyncRequest{TeamID: team.ID})
	if !secondary.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestSyncDisabledConfig(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")

	_, err := f.sync.SetConfig(context.Background(), primary.SetConfigRequest{
		TeamID:      team.ID,
		ManifestURL: "https://example.com/manifest.json",
		Enabled:     false,
		Policy:      models.DefaultSyncPolicy(),
	})
	if err != nil {
		t.Fatalf("failed to set config: %v", err)
	}

	_, err = f.sync.Sync(context.Background(), primary.SyncRequest{TeamID: team.ID})
	if err == nil {
		t.Error("expected error syncing a disabled config")
	}
}

func TestSyncCreatesServices(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.DefaultSyncPolicy())
	f.serveManifest(
		entry("payments", "Payments API", "https://payments.internal"),
		entry("billing", "Billing API", "https://billing.internal"),
	)

	result := f.runSync(t, team.ID)

	if result.Status != models.SyncStatusSuccess {
		t.Errorf("expected status success, got %s (errors: %v)", result.Status, result.Errors)
	}
	if result.Summary.Created != 2 {
		t.Errorf("expected 2 created, got %d", result.Summary.Created)
	}

	svc := f.serviceByKey(t, team.ID, "payments")
	if svc == nil {
		t.Fatal("expected payments service to exist")
	}
	if !svc.ManifestManaged {
		t.Error("expected created service to be manifest managed")
	}
	if svc.Status != models.ServiceStatusActive {
		t.Errorf("expected status active, got %s", svc.Status)
	}
	if svc.PollIntervalSeconds != models.DefaultPollIntervalSeconds {
		t.Errorf("expected default poll interval, got %d", svc.PollIntervalSeconds)
	}
	if svc.LastSyncedValues == nil {
		t.Fatal("expected last-synced snapshot to be recorded")
	}
	if svc.LastSyncedValues.Endpoint != "https://payments.internal" {
		t.Errorf("unexpected snapshot endpoint %q", svc.LastSyncedValues.Endpoint)
	}

	// History and config snapshot were written in the same run
	entries, total, err := f.sync.History(context.Background(), team.ID, 10, 0)
	if err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", total)
	}
	if entries[0].ID != result.HistoryID {
		t.Errorf("history ID mismatch: %s vs %s", entries[0].ID, result.HistoryID)
	}
	if entries[0].Summary == nil || entries[0].Summary.Created != 2 {
		t.Error("expected history summary with 2 created")
	}

	cfg, err := f.sync.GetConfig(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("failed to get config: %v", err)
	}
	if cfg.LastSyncStatus != models.SyncStatusSuccess {
		t.Errorf("expected config snapshot success, got %q", cfg.LastSyncStatus)
	}
	if cfg.LastSyncAt == nil {
		t.Error("expected last sync time to be set")
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.DefaultSyncPolicy())
	f.serveManifest(entry("payments", "Payments API", "https://payments.internal"))

	f.runSync(t, team.ID)
	result := f.runSync(t, team.ID)

	if result.Summary.Created != 0 || result.Summary.Updated != 0 {
		t.Errorf("second run should change nothing, got created=%d updated=%d",
			result.Summary.Created, result.Summary.Updated)
	}
	if result.Summary.Unchanged != 1 {
		t.Errorf("expected 1 unchanged, got %d", result.Summary.Unchanged)
	}
}

func TestSyncAppliesManifestChanges(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.DefaultSyncPolicy())
	f.serveManifest(entry("payments", "Payments API", "https://payments.internal"))
	f.runSync(t, team.ID)

	f.serveManifest(entry("payments", "Payments Service", "https://payments.internal"))
	result := f.runSync(t, team.ID)

	if result.Summary.Updated != 1 {
		t.Errorf("expected 1 updated, got %d", result.Summary.Updated)
	}
	if result.Summary.DriftFlagged != 0 {
		t.Errorf("manifest-side change must not raise drift, got %d flags", result.Summary.DriftFlagged)
	}

	svc := f.serviceByKey(t, team.ID, "payments")
	if svc.Name != "Payments Service" {
		t.Errorf("expected renamed service, got %q", svc.Name)
	}
	if svc.LastSyncedValues.Name != "Payments Service" {
		t.Errorf("expected refreshed snapshot, got %q", svc.LastSyncedValues.Name)
	}
}

func TestSyncFlagsLocalEdit(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.DefaultSyncPolicy())
	f.serveManifest(entry("payments", "Payments API", "https://payments.internal"))
	f.runSync(t, team.ID)

	// Someone edits the endpoint by hand between syncs.
	svc := f.serviceByKey(t, team.ID, "payments")
	edited := svc.CurrentFields()
	edited.Endpoint = "https://payments-v2.internal"
	if err := f.repos.Services.UpdateFields(context.Background(), svc.ID, edited); err != nil {
		t.Fatalf("failed to edit service: %v", err)
	}

	result := f.runSync(t, team.ID)

	if result.Summary.DriftFlagged != 1 {
		t.Fatalf("expected 1 drift-flagged service, got %d", result.Summary.DriftFlagged)
	}

	// The local value stays in place until a human decides.
	svc = f.serviceByKey(t, team.ID, "payments")
	if svc.Endpoint != "https://payments-v2.internal" {
		t.Errorf("flag policy must not overwrite the local edit, got %q", svc.Endpoint)
	}

	flags, total, err := f.drift.ListFlags(context.Background(), team.ID, primary.DriftFilters{})
	if err != nil {
		t.Fatalf("failed to list flags: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 drift flag, got %d", total)
	}
	flag := flags[0]
	if flag.Status != models.DriftStatusPending {
		t.Errorf("expected pending flag, got %s", flag.Status)
	}
	if flag.FieldName != models.FieldEndpoint {
		t.Errorf("expected endpoint drift, got %s", flag.FieldName)
	}
	if flag.ManifestValue != `"https://payments.internal"` {
		t.Errorf("unexpected manifest value %q", flag.ManifestValue)
	}
	if flag.CurrentValue != `"https://payments-v2.internal"` {
		t.Errorf("unexpected current value %q", flag.CurrentValue)
	}
	if flag.SyncHistoryID != result.HistoryID {
		t.Errorf("flag should point at the run that detected it")
	}
}

func TestSyncManifestWinsOverwritesLocalEdit(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.SyncPolicy{
		OnFieldDrift: models.FieldPolicyManifestWins,
		OnRemoval:    models.RemovalPolicyFlag,
	})
	f.serveManifest(entry("payments", "Payments API", "https://payments.internal"))
	f.runSync(t, team.ID)

	svc := f.serviceByKey(t, team.ID, "payments")
	edited := svc.CurrentFields()
	edited.Endpoint = "https://payments-v2.internal"
	if err := f.repos.Services.UpdateFields(context.Background(), svc.ID, edited); err != nil {
		t.Fatalf("failed to edit service: %v", err)
	}

	result := f.runSync(t, team.ID)

	if result.Summary.Updated != 1 {
		t.Errorf("expected 1 updated, got %d", result.Summary.Updated)
	}
	if result.Summary.DriftFlagged != 0 {
		t.Errorf("manifest_wins must not flag, got %d", result.Summary.DriftFlagged)
	}

	svc = f.serviceByKey(t, team.ID, "payments")
	if svc.Endpoint != "https://payments.internal" {
		t.Errorf("expected manifest value restored, got %q", svc.Endpoint)
	}

	counts, err := f.drift.CountFlags(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("failed to count flags: %v", err)
	}
	if counts.Pending != 0 {
		t.Errorf("expected no pending flags, got %d", counts.Pending)
	}
}

func TestSyncLocalWinsKeepsLocalEdit(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.SyncPolicy{
		OnFieldDrift: models.FieldPolicyLocalWins,
		OnRemoval:    models.RemovalPolicyFlag,
	})
	f.serveManifest(entry("payments", "Payments API", "https://payments.internal"))
	f.runSync(t, team.ID)

	svc := f.serviceByKey(t, team.ID, "payments")
	edited := svc.CurrentFields()
	edited.Endpoint = "https://payments-v2.internal"
	if err := f.repos.Services.UpdateFields(context.Background(), svc.ID, edited); err != nil {
		t.Fatalf("failed to edit service: %v", err)
	}

	result := f.runSync(t, team.ID)

	if result.Summary.DriftFlagged != 0 || result.Summary.Updated != 0 {
		t.Errorf("local_wins should neither flag nor update, got flags=%d updated=%d",
			result.Summary.DriftFlagged, result.Summary.Updated)
	}

	svc = f.serviceByKey(t, team.ID, "payments")
	if svc.Endpoint != "https://payments-v2.internal" {
		t.Errorf("expected local edit preserved, got %q", svc.Endpoint)
	}
}

func TestSyncRepeatedDriftKeepsOneFlag(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.DefaultSyncPolicy())
	f.serveManifest(entry("payments", "Payments API", "https://payments.internal"))
	f.runSync(t, team.ID)

	svc := f.serviceByKey(t, team.ID, "payments")
	edited := svc.CurrentFields()
	edited.Endpoint = "https://payments-v2.internal"
	if err := f.repos.Services.UpdateFields(context.Background(), svc.ID, edited); err != nil {
		t.Fatalf("failed to edit service: %v", err)
	}

	f.runSync(t, team.ID)
	f.runSync(t, team.ID)
	f.runSync(t, team.ID)

	_, total, err := f.drift.ListFlags(context.Background(), team.ID, primary.DriftFilters{})
	if err != nil {
		t.Fatalf("failed to list flags: %v", err)
	}
	if total != 1 {
		t.Errorf("repeated detection must reuse the flag, got %d flags", total)
	}
}

func TestSyncDismissedFlagStaysDismissed(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.DefaultSyncPolicy())
	f.serveManifest(entry("payments", "Payments API", "https://payments.internal"))
	f.runSync(t, team.ID)

	svc := f.serviceByKey(t, team.ID, "payments")
	edited := svc.CurrentFields()
	edited.Endpoint = "https://payments-v2.internal"
	if err := f.repos.Services.UpdateFields(context.Background(), svc.ID, edited); err != nil {
		t.Fatalf("failed to edit service: %v", err)
	}
	f.runSync(t, team.ID)

	flags, _, err := f.drift.ListFlags(context.Background(), team.ID, primary.DriftFilters{})
	if err != nil {
		t.Fatalf("failed to list flags: %v", err)
	}
	if _, err := f.drift.Dismiss(context.Background(), flags[0].ID, ""); err != nil {
		t.Fatalf("failed to dismiss: %v", err)
	}

	// Same divergence again: the dismissal holds.
	f.runSync(t, team.ID)
	flag, err := f.drift.GetFlag(context.Background(), flags[0].ID)
	if err != nil {
		t.Fatalf("failed to get flag: %v", err)
	}
	if flag.Status != models.DriftStatusDismissed {
		t.Errorf("expected dismissed to survive re-detection, got %s", flag.Status)
	}

	// The manifest itself moves: that is new information, reopen.
	f.serveManifest(entry("payments", "Payments API", "https://payments-v3.internal"))
	f.runSync(t, team.ID)
	flag, err = f.drift.GetFlag(context.Background(), flags[0].ID)
	if err != nil {
		t.Fatalf("failed to get flag: %v", err)
	}
	if flag.Status != models.DriftStatusPending {
		t.Errorf("expected reopened flag, got %s", flag.Status)
	}
	if flag.ManifestValue != `"https://payments-v3.internal"` {
		t.Errorf("expected refreshed manifest value, got %q", flag.ManifestValue)
	}
}

func TestSyncRemovalFlagged(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.DefaultSyncPolicy())
	f.serveManifest(entry("payments", "Payments API", "https://payments.internal"))
	f.runSync(t, team.ID)

	f.serveManifest()
	result := f.runSync(t, team.ID)

	if result.Summary.DriftFlagged != 1 {
		t.Errorf("expected 1 drift-flagged, got %d", result.Summary.DriftFlagged)
	}

	svc := f.serviceByKey(t, team.ID, "payments")
	if svc == nil {
		t.Fatal("flag policy must not remove the service")
	}
	if svc.Status != models.ServiceStatusActive {
		t.Errorf("flag policy must not deactivate, got %s", svc.Status)
	}

	counts, err := f.drift.CountFlags(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("failed to count flags: %v", err)
	}
	if counts.RemovalPending != 1 {
		t.Errorf("expected 1 pending removal flag, got %d", counts.RemovalPending)
	}
}

func TestSyncRemovalDeactivates(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.SyncPolicy{
		OnFieldDrift: models.FieldPolicyFlag,
		OnRemoval:    models.RemovalPolicyDeactivate,
	})
	f.serveManifest(entry("payments", "Payments API", "https://payments.internal"))
	f.runSync(t, team.ID)

	f.serveManifest()
	result := f.runSync(t, team.ID)

	if result.Summary.Deactivated != 1 {
		t.Errorf("expected 1 deactivated, got %d", result.Summary.Deactivated)
	}
	svc := f.serviceByKey(t, team.ID, "payments")
	if svc == nil {
		t.Fatal("deactivate policy must keep the row")
	}
	if svc.Status != models.ServiceStatusInactive {
		t.Errorf("expected inactive, got %s", svc.Status)
	}
}

func TestSyncRemovalDeletes(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.SyncPolicy{
		OnFieldDrift: models.FieldPolicyFlag,
		OnRemoval:    models.RemovalPolicyDelete,
	})
	f.serveManifest(entry("payments", "Payments API", "https://payments.internal"))
	f.runSync(t, team.ID)

	f.serveManifest()
	result := f.runSync(t, team.ID)

	if result.Summary.Deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", result.Summary.Deleted)
	}
	if svc := f.serviceByKey(t, team.ID, "payments"); svc != nil {
		t.Error("expected service row gone")
	}
}

func TestSyncIgnoresUnmanagedServices(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.SyncPolicy{
		OnFieldDrift: models.FieldPolicyFlag,
		OnRemoval:    models.RemovalPolicyDelete,
	})

	// An ad hoc service, never declared by a manifest.
	adhoc := &models.Service{
		TeamID: team.ID,
		Name:   "Legacy Cron",
		Status: models.ServiceStatusActive,
	}
	if err := f.repos.Services.Create(context.Background(), adhoc); err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	f.serveManifest()
	result := f.runSync(t, team.ID)

	if result.Summary.Deleted != 0 {
		t.Errorf("unmanaged services are not removal candidates, got %d deleted", result.Summary.Deleted)
	}
	svc, err := f.repos.Services.GetByID(context.Background(), adhoc.ID)
	if err != nil {
		t.Fatalf("failed to get service: %v", err)
	}
	if svc == nil {
		t.Fatal("expected ad hoc service untouched")
	}
}

func TestSyncDuplicateKeysPartial(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.DefaultSyncPolicy())
	f.serveManifest(
		entry("payments", "Payments API", "https://payments.internal"),
		entry("payments", "Payments Copy", "https://other.internal"),
	)

	result := f.runSync(t, team.ID)

	if result.Status != models.SyncStatusPartial {
		t.Errorf("expected partial status, got %s", result.Status)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if result.Summary.Created != 1 {
		t.Errorf("first occurrence still syncs, got %d created", result.Summary.Created)
	}
	svc := f.serviceByKey(t, team.ID, "payments")
	if svc.Name != "Payments API" {
		t.Errorf("expected first occurrence to win, got %q", svc.Name)
	}
}

func TestSyncWiresDependencies(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.DefaultSyncPolicy())

	gateway := entry("gateway", "API Gateway", "https://gw.internal")
	gateway.Dependencies = []string{"payments", "ghost", "gateway"}
	f.serveManifest(
		entry("payments", "Payments API", "https://payments.internal"),
		gateway,
	)

	result := f.runSync(t, team.ID)

	if result.Summary.DependenciesUpdated != 1 {
		t.Errorf("expected 1 dependency rewrite, got %d", result.Summary.DependenciesUpdated)
	}
	// Unknown key and self-dependency degrade to warnings.
	if len(result.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", result.Warnings)
	}

	gw := f.serviceByKey(t, team.ID, "gateway")
	payments := f.serviceByKey(t, team.ID, "payments")
	deps, err := f.repos.Services.ListDependencies(context.Background(), gw.ID)
	if err != nil {
		t.Fatalf("failed to list dependencies: %v", err)
	}
	if len(deps) != 1 || deps[0] != payments.ID {
		t.Errorf("expected gateway -> payments, got %v", deps)
	}
}

func TestSyncFetchFailureRecordsFailedRun(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.DefaultSyncPolicy())
	f.fetcher.err = errors.New("connection refused")

	result, err := f.sync.Sync(context.Background(), primary.SyncRequest{TeamID: team.ID})
	if err != nil {
		t.Fatalf("fetch failure is an outcome, not an error: %v", err)
	}
	if result.Status != models.SyncStatusFailed {
		t.Errorf("expected failed status, got %s", result.Status)
	}

	entries, total, err := f.sync.History(context.Background(), team.ID, 10, 0)
	if err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected the failed run recorded, got %d entries", total)
	}
	if entries[0].Status != models.SyncStatusFailed {
		t.Errorf("expected failed history entry, got %s", entries[0].Status)
	}
	if len(entries[0].Errors) != 1 {
		t.Errorf("expected fetch error captured, got %v", entries[0].Errors)
	}

	cfg, err := f.sync.GetConfig(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("failed to get config: %v", err)
	}
	if cfg.LastSyncStatus != models.SyncStatusFailed {
		t.Errorf("expected failed config snapshot, got %q", cfg.LastSyncStatus)
	}
	if cfg.LastSyncError == "" {
		t.Error("expected last sync error recorded")
	}
}

func TestSyncInvalidManifestTouchesNothing(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.DefaultSyncPolicy())
	f.fetcher.result = &secondary.ValidationResult{
		Valid: false,
		Errors: []secondary.ValidationIssue{
			{Path: "/services/0", Message: "missing required property 'key'"},
		},
	}

	result, err := f.sync.Sync(context.Background(), primary.SyncRequest{TeamID: team.ID})
	if err != nil {
		t.Fatalf("validation failure is an outcome, not an error: %v", err)
	}
	if result.Status != models.SyncStatusFailed {
		t.Errorf("expected failed status, got %s", result.Status)
	}

	services, err := f.repos.Services.ListByTeam(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("failed to list services: %v", err)
	}
	if len(services) != 0 {
		t.Errorf("invalid manifest must not touch the catalog, got %d services", len(services))
	}
}

func TestRemoveConfigResolvesTeamFlags(t *testing.T) {
	f := newFixture(t)
	team := f.seedTeam(t, "platform")
	f.configure(t, team.ID, models.DefaultSyncPolicy())
	f.serveManifest(entry("payments", "Payments API", "https://payments.internal"))
	f.runSync(t, team.ID)

	svc := f.serviceByKey(t, team.ID, "payments")
	edited := svc.CurrentFields()
	edited.Endpoint = "https://payments-v2.internal"
	if err := f.repos.Services.UpdateFields(context.Background(), svc.ID, edited); err != nil {
		t.Fatalf("failed to edit service: %v", err)
	}
	f.runSync(t, team.ID)

	removed, err := f.sync.RemoveConfig(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("failed to remove config: %v", err)
	}
	if !removed {
		t.Fatal("expected config removed")
	}

	cfg, err := f.sync.GetConfig(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("failed to get config: %v", err)
	}
	if cfg != nil {
		t.Error("expected config gone")
	}

	counts, err := f.drift.CountFlags(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("failed to count flags: %v", err)
	}
	if counts.Pending != 0 || counts.Dismissed != 0 {
		t.Errorf("expected all flags closed, got pending=%d dismissed=%d", counts.Pending, counts.Dismissed)
	}

	// Previously synced services survive the config removal.
	if f.serviceByKey(t, team.ID, "payments") == nil {
		t.Error("expected synced service to survive")
	}
}

func TestRemoveConfigUnknownTeam(t *testing.T) {
	f := newFixture(t)

	removed, err := f.sync.RemoveConfig(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed {
		t.Error("expected false for a team without config")
	}
}

func TestEnabledConfigs(t *testing.T) {
	f := newFixture(t)
	a := f.seedTeam(t, "platform")
	b := f.seedTeam(t, "payments")
	f.configure(t, a.ID, models.DefaultSyncPolicy())

	_, err := f.sync.SetConfig(context.Background(), primary.SetConfigRequest{
		TeamID:      b.ID,
		ManifestURL: "https://example.com/b.json",
		Enabled:     false,
		Policy:      models.DefaultSyncPolicy(),
	})
	if err != nil {
		t.Fatalf("failed to set config: %v", err)
	}

	configs, err := f.sync.EnabledConfigs(context.Background())
	if err != nil {
		t.Fatalf("failed to list enabled configs: %v", err)
	}
	if len(configs) != 1 || configs[0].TeamID != a.ID {
		t.Errorf("expected only team %s enabled, got %v", a.ID, configs)
	}
}
