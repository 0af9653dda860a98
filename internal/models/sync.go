package models

// Field drift policies (what to do when a manifest-governed field was
// edited locally since the last sync)
const (
	FieldPolicyFlag         = "flag"
	FieldPolicyManifestWins = "manifest_wins"
	FieldPolicyLocalWins    = "local_wins"
)

// Removal policies (what to do when a managed service disappears from
// the manifest)
const (
	RemovalPolicyFlag       = "flag"
	RemovalPolicyDeactivate = "deactivate"
	RemovalPolicyDelete     = "delete"
)

// SyncPolicy is a team's configured conflict handling. Stored as a JSON
// text column; (de)serialization happens only at the persistence edge.
type SyncPolicy struct {
	OnFieldDrift string `json:"on_field_drift"`
	OnRemoval    string `json:"on_removal"`
}

// DefaultSyncPolicy flags everything for human review.
func DefaultSyncPolicy() SyncPolicy {
	return SyncPolicy{
		OnFieldDrift: FieldPolicyFlag,
		OnRemoval:    RemovalPolicyFlag,
	}
}

// Sync run statuses
const (
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusFailed  = "failed"
)

// Sync trigger types
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// SyncChange describes what happened to one manifest entry during a run.
type SyncChange struct {
	ManifestKey   string   `json:"manifest_key"`
	ServiceName   string   `json:"service_name"`
	Action        string   `json:"action"`
	FieldsChanged []string `json:"fields_changed,omitempty"`
	DriftFields   []string `json:"drift_fields,omitempty"`
}

// SyncSummary is the structured outcome of one sync run.
type SyncSummary struct {
	Created      int `json:"created"`
	Updated      int `json:"updated"`
	Unchanged    int `json:"unchanged"`
	Deactivated  int `json:"deactivated"`
	Deleted      int `json:"deleted"`
	DriftFlagged int `json:"drift_flagged"`

	DependenciesUpdated int `json:"dependencies_updated,omitempty"`

	Changes []SyncChange `json:"changes,omitempty"`
}
