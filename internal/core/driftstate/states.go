// Package driftstate holds the drift flag state machine. It is pure
// logic so the transition rules can be tested without a database and
// shared between the store's guarded UPDATEs and its bulk operations.
package driftstate

import "github.com/example/catalogd/internal/models"

// IsActive reports whether a flag in the given status counts as active,
// i.e. participates in the one-active-flag-per-key invariant and shows
// up in review queues.
func IsActive(status string) bool {
	return status == models.DriftStatusPending || status == models.DriftStatusDismissed
}

// IsTerminal reports whether the status permits no further transitions.
func IsTerminal(status string) bool {
	return status == models.DriftStatusAccepted || status == models.DriftStatusResolved
}

// CanResolve reports whether resolve(target) is legal from the given
// source status.
//
//	pending   -> dismissed
//	pending   -> accepted
//	dismissed -> accepted   (bulk accept of a whole scope)
//	dismissed -> resolved
func CanResolve(from, target string) bool {
	switch target {
	case models.DriftStatusDismissed:
		return from == models.DriftStatusPending
	case models.DriftStatusAccepted:
		return IsActive(from)
	case models.DriftStatusResolved:
		return from == models.DriftStatusDismissed
	default:
		return false
	}
}

// CanReopen reports whether reopen() is legal: only a dismissed flag
// can return to pending.
func CanReopen(from string) bool {
	return from == models.DriftStatusDismissed
}

// LegalSources returns the statuses from which resolve(target) is
// legal, in a fixed order suitable for SQL IN clauses.
func LegalSources(target string) []string {
	var sources []string
	for _, s := range []string{models.DriftStatusPending, models.DriftStatusDismissed} {
		if CanResolve(s, target) {
			sources = append(sources, s)
		}
	}
	return sources
}

// IsResolveTarget reports whether the status is a valid resolve target.
func IsResolveTarget(status string) bool {
	switch status {
	case models.DriftStatusDismissed, models.DriftStatusAccepted, models.DriftStatusResolved:
		return true
	default:
		return false
	}
}
