// Package secondary defines the driven ports: repository and fetcher
// interfaces plus the persistence-shaped records they exchange.
package secondary

import (
	"time"

	"github.com/example/catalogd/internal/models"
)

// DriftFlagRecord is the persistence shape of one drift flag, enriched
// with joined display fields where the query provides them.
type DriftFlagRecord struct {
	ID            string
	TeamID        string
	ServiceID     string
	DriftType     string
	FieldName     string // empty for service_removal
	ManifestValue string // JSON-encoded; empty for service_removal
	CurrentValue  string // JSON-encoded; empty for service_removal
	Status        string
	FirstDetected time.Time
	LastDetected  time.Time
	ResolvedAt    *time.Time
	ResolvedBy    string
	SyncHistoryID string

	// Joined display fields (list/get queries only)
	ServiceName        string
	ServiceManifestKey string
	ResolvedByName     string
}

// DriftFlagFilters narrows ListByTeam results.
type DriftFlagFilters struct {
	Status    string
	DriftType string
	ServiceID string
	Limit     int
	Offset    int
}

// DriftFlagCounts summarizes a team's open drift.
type DriftFlagCounts struct {
	Pending             int
	Dismissed           int
	FieldChangePending  int
	RemovalPending      int
}

// ManifestConfigRecord is a team's manifest configuration plus the
// cached snapshot of its most recent sync. Policy and summary are typed
// here; JSON encoding happens only inside the sqlite adapter.
type ManifestConfigRecord struct {
	TeamID          string
	ManifestURL     string
	Enabled         bool
	Policy          models.SyncPolicy
	LastSyncStatus  string
	LastSyncError   string
	LastSyncSummary *models.SyncSummary
	LastSyncAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SyncHistoryRecord is one immutable row of the sync run log.
type SyncHistoryRecord struct {
	ID          string
	TeamID      string
	TriggerType string
	TriggeredBy string
	ManifestURL string
	Status      string
	Summary     *models.SyncSummary
	Errors      []string
	Warnings    []string
	Duration    time.Duration
	CreatedAt   time.Time
}

// ValidationIssue locates one problem in a manifest document.
type ValidationIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of validating a fetched manifest.
type ValidationResult struct {
	Valid        bool              `json:"valid"`
	ServiceCount int               `json:"service_count"`
	Errors       []ValidationIssue `json:"errors,omitempty"`
	Warnings     []ValidationIssue `json:"warnings,omitempty"`
}
