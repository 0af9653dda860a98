package models

// Manifest-governed service fields. These are the only fields a sync
// will write or raise drift for.
const (
	FieldName           = "name"
	FieldEndpoint       = "endpoint"
	FieldHealthEndpoint = "health_endpoint"
	FieldPollInterval   = "poll_interval_seconds"
)

// ManifestGovernedFields lists the governed fields in diff order.
var ManifestGovernedFields = []string{
	FieldName,
	FieldEndpoint,
	FieldHealthEndpoint,
	FieldPollInterval,
}

// Manifest is a validated team manifest document.
type Manifest struct {
	Version  int             `json:"version"`
	Services []ManifestEntry `json:"services"`
}

// ManifestEntry declares one service in a manifest.
type ManifestEntry struct {
	Key                 string   `json:"key"`
	Name                string   `json:"name"`
	Endpoint            string   `json:"endpoint,omitempty"`
	HealthEndpoint      string   `json:"health_endpoint,omitempty"`
	PollIntervalSeconds int      `json:"poll_interval_seconds,omitempty"`
	Dependencies        []string `json:"dependencies,omitempty"`
}

// Fields returns the entry's governed field values.
func (e ManifestEntry) Fields() ManifestFields {
	interval := e.PollIntervalSeconds
	if interval <= 0 {
		interval = DefaultPollIntervalSeconds
	}
	return ManifestFields{
		Name:                e.Name,
		Endpoint:            e.Endpoint,
		HealthEndpoint:      e.HealthEndpoint,
		PollIntervalSeconds: interval,
	}
}

// DefaultPollIntervalSeconds applies when a manifest entry omits the
// poll interval.
const DefaultPollIntervalSeconds = 60

// ManifestFields is the governed-field snapshot kept per service after
// every sync (the manifest_last_synced_values column). It lets the
// differ tell "manifest changed" apart from "someone edited the service
// locally" without replaying old manifests.
type ManifestFields struct {
	Name                string `json:"name"`
	Endpoint            string `json:"endpoint"`
	HealthEndpoint      string `json:"health_endpoint"`
	PollIntervalSeconds int    `json:"poll_interval_seconds"`
}

// Get returns the value of the named governed field.
func (f ManifestFields) Get(field string) any {
	switch field {
	case FieldName:
		return f.Name
	case FieldEndpoint:
		return f.Endpoint
	case FieldHealthEndpoint:
		return f.HealthEndpoint
	case FieldPollInterval:
		return f.PollIntervalSeconds
	default:
		return nil
	}
}
