package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/example/catalogd/internal/models"
)

// Diff record kinds, in the order a single entry can produce them.
const (
	DiffCreated          = "created"
	DiffUpdated          = "updated"
	DiffUnchanged        = "unchanged"
	DiffDriftCandidate   = "drift_candidate"
	DiffRemovalCandidate = "removal_candidate"
)

// DiffRecord is one reconciliation finding. Exactly one of the kind
// constants above; Entry is set for created, ServiceID for the rest.
// A drift candidate additionally names the field and carries both
// values JSON-encoded, ready for drift flag storage.
type DiffRecord struct {
	Kind      string
	ServiceID string
	Entry     models.ManifestEntry

	// For updated: fields whose manifest value should be written.
	FieldsChanged []string

	// For drift_candidate
	Field         string
	ManifestValue string
	CurrentValue  string
}

// Diff compares a team's stored services against freshly fetched
// manifest entries and returns the ordered reconciliation findings.
//
// A field difference is true drift only when the live value was edited
// locally since the last sync: it must differ from the manifest's
// current value AND from the value the previous sync wrote (the
// manifest_last_synced_values snapshot). A live value still equal to
// the last-synced one means only the manifest moved, which is a plain
// update. Services with no snapshot (claimed, never synced) are treated
// as drift candidates for any differing field.
//
// Managed services absent from the manifest become removal candidates.
// Entries are processed in manifest order, then removals in stored
// order.
func Diff(services []*models.Service, entries []models.ManifestEntry) []DiffRecord {
	byKey := make(map[string]*models.Service, len(services))
	for _, svc := range services {
		if svc.ManifestKey != "" {
			byKey[svc.ManifestKey] = svc
		}
	}

	var records []DiffRecord
	seen := make(map[string]bool, len(entries))

	for _, entry := range entries {
		if seen[entry.Key] {
			// Duplicate keys within one manifest: first one wins,
			// later ones are handled upstream as entry errors.
			continue
		}
		seen[entry.Key] = true

		svc, ok := byKey[entry.Key]
		if !ok {
			records = append(records, DiffRecord{Kind: DiffCreated, Entry: entry})
			continue
		}

		records = append(records, diffService(svc, entry)...)
	}

	for _, svc := range services {
		if !svc.ManifestManaged || svc.ManifestKey == "" || seen[svc.ManifestKey] {
			continue
		}
		records = append(records, DiffRecord{
			Kind:      DiffRemovalCandidate,
			ServiceID: svc.ID,
			Entry:     models.ManifestEntry{Key: svc.ManifestKey, Name: svc.Name},
		})
	}

	return records
}

func diffService(svc *models.Service, entry models.ManifestEntry) []DiffRecord {
	manifest := entry.Fields()
	current := svc.CurrentFields()

	var changed []string
	var drifts []DiffRecord

	for _, field := range models.ManifestGovernedFields {
		manifestVal := manifest.Get(field)
		currentVal := current.Get(field)
		if manifestVal == currentVal {
			continue
		}

		if svc.LastSyncedValues != nil && currentVal == svc.LastSyncedValues.Get(field) {
			// Live value is untouched since the last sync; only the
			// manifest moved.
			changed = append(changed, field)
			continue
		}

		drifts = append(drifts, DiffRecord{
			Kind:          DiffDriftCandidate,
			ServiceID:     svc.ID,
			Entry:         entry,
			Field:         field,
			ManifestValue: EncodeValue(manifestVal),
			CurrentValue:  EncodeValue(currentVal),
		})
	}

	var records []DiffRecord
	if len(changed) > 0 {
		records = append(records, DiffRecord{
			Kind:          DiffUpdated,
			ServiceID:     svc.ID,
			Entry:         entry,
			FieldsChanged: changed,
		})
	}
	records = append(records, drifts...)

	if len(records) == 0 {
		records = append(records, DiffRecord{
			Kind:      DiffUnchanged,
			ServiceID: svc.ID,
			Entry:     entry,
		})
	}
	return records
}

// EncodeValue JSON-encodes a field value for drift flag storage, so
// strings round-trip with quotes and numbers stay bare.
func EncodeValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
	return string(data)
}
