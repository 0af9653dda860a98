package models

import "time"

// Service statuses
const (
	ServiceStatusActive   = "active"
	ServiceStatusInactive = "inactive"
)

// Service represents one catalog entry. Manifest-managed services are
// owned by their team's manifest; the rest were created ad hoc.
type Service struct {
	ID                  string
	TeamID              string
	Name                string
	Endpoint            string
	HealthEndpoint      string
	PollIntervalSeconds int
	Status              string
	ManifestKey         string
	ManifestManaged     bool
	LastSyncedValues    *ManifestFields
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CurrentFields returns the service's live governed-field values.
func (s *Service) CurrentFields() ManifestFields {
	return ManifestFields{
		Name:                s.Name,
		Endpoint:            s.Endpoint,
		HealthEndpoint:      s.HealthEndpoint,
		PollIntervalSeconds: s.PollIntervalSeconds,
	}
}

// Team owns services and at most one manifest config.
type Team struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is referenced by drift resolution and sync triggers.
type User struct {
	ID          string
	DisplayName string
	Email       string
	CreatedAt   time.Time
}
