package models

// Drift types
const (
	DriftTypeFieldChange    = "field_change"
	DriftTypeServiceRemoval = "service_removal"
)

// Drift flag statuses. Accepted and resolved are terminal; pending and
// dismissed flags are "active" and count against the one-active-flag-
// per-key invariant.
const (
	DriftStatusPending   = "pending"
	DriftStatusDismissed = "dismissed"
	DriftStatusAccepted  = "accepted"
	DriftStatusResolved  = "resolved"
)

// ValidDriftStatuses lists all drift flag statuses.
var ValidDriftStatuses = []string{
	DriftStatusPending,
	DriftStatusDismissed,
	DriftStatusAccepted,
	DriftStatusResolved,
}

// Upsert actions reported by the drift flag store.
const (
	UpsertActionCreated   = "created"
	UpsertActionUpdated   = "updated"
	UpsertActionUnchanged = "unchanged"
	UpsertActionReopened  = "reopened"
)
