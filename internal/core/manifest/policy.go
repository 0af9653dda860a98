// Package manifest holds the pure reconciliation logic: the differ that
// compares a fetched manifest against stored services, and the policy
// engine that maps detected drift to an action.
package manifest

import "github.com/example/catalogd/internal/models"

// Actions the policy engine can choose for a detected drift.
const (
	ActionFlagForReview = "flag_for_review"
	ActionAutoApply     = "auto_apply"
	ActionIgnore        = "ignore"
)

// Decide maps (drift kind, configured policy) to an action. Unknown or
// empty policy values fall back to flagging for review, the safe
// default.
func Decide(driftType string, policy models.SyncPolicy) string {
	switch driftType {
	case models.DriftTypeFieldChange:
		switch policy.OnFieldDrift {
		case models.FieldPolicyManifestWins:
			return ActionAutoApply
		case models.FieldPolicyLocalWins:
			return ActionIgnore
		default:
			return ActionFlagForReview
		}
	case models.DriftTypeServiceRemoval:
		switch policy.OnRemoval {
		case models.RemovalPolicyDeactivate, models.RemovalPolicyDelete:
			return ActionAutoApply
		default:
			return ActionFlagForReview
		}
	default:
		return ActionFlagForReview
	}
}
