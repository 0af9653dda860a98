package app

import (
	"context"
	"fmt"

	coremanifest "github.com/example/catalogd/internal/core/manifest"
	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/secondary"
)

// syncRun accumulates the state of one reconciliation pass. All of its
// mutations happen inside the orchestrator's transaction.
type syncRun struct {
	teamID    string
	historyID string
	policy    models.SyncPolicy

	status   string
	summary  models.SyncSummary
	errors   []string
	warnings []string

	// manifest_key -> service id, kept current across creations so
	// dependency wiring can resolve keys introduced in this same run.
	keyToID map[string]string

	driftedServices map[string]bool
}

// apply runs the differ and executes the policy decision for every
// diff record. Per-entry failures are captured and do not abort the
// remaining entries.
func (r *syncRun) apply(ctx context.Context, repos secondary.Repositories, manifest *models.Manifest) error {
	services, err := repos.Services.ListByTeam(ctx, r.teamID)
	if err != nil {
		return err
	}

	r.keyToID = make(map[string]string, len(services))
	r.driftedServices = make(map[string]bool)
	for _, svc := range services {
		if svc.ManifestKey != "" {
			r.keyToID[svc.ManifestKey] = svc.ID
		}
	}

	seen := make(map[string]bool, len(manifest.Services))
	var entries []models.ManifestEntry
	for _, entry := range manifest.Services {
		if seen[entry.Key] {
			r.errors = append(r.errors, fmt.Sprintf("service %s: duplicate manifest key", entry.Key))
			continue
		}
		seen[entry.Key] = true
		entries = append(entries, entry)
	}

	deleted := make(map[string]bool)
	for _, rec := range coremanifest.Diff(services, entries) {
		if err := r.applyRecord(ctx, repos, rec, deleted); err != nil {
			if secondary.IsNotFound(err) {
				// Broken preconditions are caller bugs; surface them.
				return err
			}
			r.errors = append(r.errors, fmt.Sprintf("service %s: %v", rec.Entry.Key, err))
		}
	}

	r.applyDependencies(ctx, repos, entries, deleted)
	return nil
}

func (r *syncRun) applyRecord(ctx context.Context, repos secondary.Repositories, rec coremanifest.DiffRecord, deleted map[string]bool) error {
	switch rec.Kind {
	case coremanifest.DiffCreated:
		return r.createService(ctx, repos, rec.Entry)

	case coremanifest.DiffUnchanged:
		r.summary.Unchanged++
		r.addChange(rec.Entry.Key, rec.Entry.Name, "unchanged", nil, nil)
		// Refresh the snapshot so claimed services gain one.
		return repos.Services.SetManifestState(ctx, rec.ServiceID, true, snapshotOf(rec.Entry))

	case coremanifest.DiffUpdated:
		return r.updateService(ctx, repos, rec)

	case coremanifest.DiffDriftCandidate:
		return r.applyFieldDrift(ctx, repos, rec)

	case coremanifest.DiffRemovalCandidate:
		return r.applyRemoval(ctx, repos, rec, deleted)

	default:
		return fmt.Errorf("unknown diff kind %q", rec.Kind)
	}
}

func (r *syncRun) createService(ctx context.Context, repos secondary.Repositories, entry models.ManifestEntry) error {
	fields := entry.Fields()
	svc := &models.Service{
		TeamID:              r.teamID,
		Name:                fields.Name,
		Endpoint:            fields.Endpoint,
		HealthEndpoint:      fields.HealthEndpoint,
		PollIntervalSeconds: fields.PollIntervalSeconds,
		Status:              models.ServiceStatusActive,
		ManifestKey:         entry.Key,
		ManifestManaged:     true,
		LastSyncedValues:    snapshotOf(entry),
	}
	if err := repos.Services.Create(ctx, svc); err != nil {
		return err
	}
	r.keyToID[entry.Key] = svc.ID
	r.summary.Created++
	r.addChange(entry.Key, entry.Name, "created", nil, nil)
	return nil
}

func (r *syncRun) updateService(ctx context.Context, repos secondary.Repositories, rec coremanifest.DiffRecord) error {
	svc, err := repos.Services.GetByID(ctx, rec.ServiceID)
	if err != nil {
		return err
	}
	if svc == nil {
		return &secondary.NotFoundError{Entity: "service", ID: rec.ServiceID}
	}

	// Write only the fields the manifest moved; drifted fields keep
	// their live values until the drift is resolved.
	manifest := rec.Entry.Fields()
	updated := svc.CurrentFields()
	for _, field := range rec.FieldsChanged {
		setField(&updated, field, manifest)
	}
	if err := repos.Services.UpdateFields(ctx, rec.ServiceID, updated); err != nil {
		return err
	}
	if err := repos.Services.SetManifestState(ctx, rec.ServiceID, true, snapshotOf(rec.Entry)); err != nil {
		return err
	}

	r.summary.Updated++
	r.addChange(rec.Entry.Key, manifest.Name, "updated", rec.FieldsChanged, nil)
	return nil
}

func (r *syncRun) applyFieldDrift(ctx context.Context, repos secondary.Repositories, rec coremanifest.DiffRecord) error {
	switch coremanifest.Decide(models.DriftTypeFieldChange, r.policy) {
	case coremanifest.ActionFlagForReview:
		_, _, err := repos.DriftFlags.UpsertFieldDrift(ctx, rec.ServiceID, rec.Field, rec.ManifestValue, rec.CurrentValue, r.historyID)
		if err != nil {
			return err
		}
		if !r.driftedServices[rec.ServiceID] {
			r.driftedServices[rec.ServiceID] = true
			r.summary.DriftFlagged++
		}
		r.addChange(rec.Entry.Key, rec.Entry.Name, "drift_flagged", nil, []string{rec.Field})
		if err := repos.Services.SetManifestState(ctx, rec.ServiceID, true, snapshotOf(rec.Entry)); err != nil {
			return err
		}
		return nil

	case coremanifest.ActionAutoApply:
		// Manifest wins: push the value and close any open flag.
		svc, err := repos.Services.GetByID(ctx, rec.ServiceID)
		if err != nil {
			return err
		}
		if svc == nil {
			return &secondary.NotFoundError{Entity: "service", ID: rec.ServiceID}
		}
		updated := svc.CurrentFields()
		setField(&updated, rec.Field, rec.Entry.Fields())
		if err := repos.Services.UpdateFields(ctx, rec.ServiceID, updated); err != nil {
			return err
		}
		if err := repos.Services.SetManifestState(ctx, rec.ServiceID, true, snapshotOf(rec.Entry)); err != nil {
			return err
		}
		flag, err := repos.DriftFlags.GetActiveFieldFlag(ctx, rec.ServiceID, rec.Field)
		if err != nil {
			return err
		}
		if flag != nil {
			if _, err := repos.DriftFlags.Resolve(ctx, flag.ID, models.DriftStatusAccepted, ""); err != nil {
				return err
			}
		}
		r.summary.Updated++
		r.addChange(rec.Entry.Key, rec.Entry.Name, "updated", []string{rec.Field}, nil)
		return nil

	default: // local wins: tolerate the divergence silently
		r.summary.Unchanged++
		return repos.Services.SetManifestState(ctx, rec.ServiceID, true, snapshotOf(rec.Entry))
	}
}

func (r *syncRun) applyRemoval(ctx context.Context, repos secondary.Repositories, rec coremanifest.DiffRecord, deleted map[string]bool) error {
	if coremanifest.Decide(models.DriftTypeServiceRemoval, r.policy) == coremanifest.ActionFlagForReview {
		_, _, err := repos.DriftFlags.UpsertRemovalDrift(ctx, rec.ServiceID, r.historyID)
		if err != nil {
			return err
		}
		if !r.driftedServices[rec.ServiceID] {
			r.driftedServices[rec.ServiceID] = true
			r.summary.DriftFlagged++
		}
		r.addChange(rec.Entry.Key, rec.Entry.Name, "drift_flagged", nil, nil)
		return nil
	}

	switch r.policy.OnRemoval {
	case models.RemovalPolicyDeactivate:
		if err := repos.Services.SetStatus(ctx, rec.ServiceID, models.ServiceStatusInactive); err != nil {
			return err
		}
		flag, err := repos.DriftFlags.GetActiveRemovalFlag(ctx, rec.ServiceID)
		if err != nil {
			return err
		}
		if flag != nil {
			if _, err := repos.DriftFlags.Resolve(ctx, flag.ID, models.DriftStatusAccepted, ""); err != nil {
				return err
			}
		}
		r.summary.Deactivated++
		r.addChange(rec.Entry.Key, rec.Entry.Name, "deactivated", nil, nil)
		return nil

	case models.RemovalPolicyDelete:
		// Drift flags and dependency edges cascade with the row.
		if _, err := repos.Services.Delete(ctx, rec.ServiceID); err != nil {
			return err
		}
		deleted[rec.ServiceID] = true
		delete(r.keyToID, rec.Entry.Key)
		r.summary.Deleted++
		r.addChange(rec.Entry.Key, rec.Entry.Name, "deleted", nil, nil)
		return nil

	default:
		return fmt.Errorf("unknown removal policy %q", r.policy.OnRemoval)
	}
}

// applyDependencies rewrites dependency edges for entries that declare
// them. Unknown keys are warnings, not errors.
func (r *syncRun) applyDependencies(ctx context.Context, repos secondary.Repositories, entries []models.ManifestEntry, deleted map[string]bool) {
	for _, entry := range entries {
		if entry.Dependencies == nil {
			continue
		}
		serviceID, ok := r.keyToID[entry.Key]
		if !ok || deleted[serviceID] {
			continue
		}

		var depIDs []string
		for _, depKey := range entry.Dependencies {
			depID, ok := r.keyToID[depKey]
			if !ok {
				r.warnings = append(r.warnings, fmt.Sprintf("service %s: unknown dependency key %q", entry.Key, depKey))
				continue
			}
			if depID == serviceID {
				r.warnings = append(r.warnings, fmt.Sprintf("service %s: depends on itself", entry.Key))
				continue
			}
			depIDs = append(depIDs, depID)
		}

		if err := repos.Services.ReplaceDependencies(ctx, serviceID, depIDs); err != nil {
			r.errors = append(r.errors, fmt.Sprintf("service %s: %v", entry.Key, err))
			continue
		}
		r.summary.DependenciesUpdated++
	}
}

func (r *syncRun) addChange(key, name, action string, fieldsChanged, driftFields []string) {
	for i := range r.summary.Changes {
		if r.summary.Changes[i].ManifestKey == key {
			c := &r.summary.Changes[i]
			// Drift on an otherwise-updated service folds into one
			// change entry.
			c.FieldsChanged = append(c.FieldsChanged, fieldsChanged...)
			c.DriftFields = append(c.DriftFields, driftFields...)
			if action == "drift_flagged" && c.Action == "unchanged" {
				c.Action = action
			}
			return
		}
	}
	r.summary.Changes = append(r.summary.Changes, models.SyncChange{
		ManifestKey:   key,
		ServiceName:   name,
		Action:        action,
		FieldsChanged: fieldsChanged,
		DriftFields:   driftFields,
	})
}

func snapshotOf(entry models.ManifestEntry) *models.ManifestFields {
	fields := entry.Fields()
	return &fields
}

func setField(fields *models.ManifestFields, field string, from models.ManifestFields) {
	switch field {
	case models.FieldName:
		fields.Name = from.Name
	case models.FieldEndpoint:
		fields.Endpoint = from.Endpoint
	case models.FieldHealthEndpoint:
		fields.HealthEndpoint = from.HealthEndpoint
	case models.FieldPollInterval:
		fields.PollIntervalSeconds = from.PollIntervalSeconds
	}
}
