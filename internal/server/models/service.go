package models

import "time"

// ServiceCredentials identifies a service. The uid is the service name.
type ServiceCredentials struct {
	UID string `json:"uid"`
}

// Deployment describes one deployment of a service version.
type Deployment struct {
	Time    time.Time `json:"time"`
	By      string    `json:"by"`
	Version string    `json:"version"`
	Package string    `json:"package,omitempty"`
}

// ServiceRecord is created on the first authorized deployment of a service
// name and is never deleted. Admins is seeded with the owner.
type ServiceRecord struct {
	Credentials ServiceCredentials    `json:"credentials"`
	Deployed    Deployment            `json:"deployed"`
	Upgraded    map[string]Deployment `json:"upgraded"`
	Roles       []string              `json:"roles"`
	Groups      []string              `json:"groups"`
	Admins      []string              `json:"admins"`
	Meta        map[string]any        `json:"meta"`
}

// NewServiceRecord builds the record for a first deployment by owner.
func NewServiceRecord(name, owner, version, pkg string, now time.Time) *ServiceRecord {
	return &ServiceRecord{
		Credentials: ServiceCredentials{UID: name},
		Deployed: Deployment{
			Time:    now.UTC(),
			By:      owner,
			Version: version,
			Package: pkg,
		},
		Upgraded: map[string]Deployment{},
		Roles:    []string{},
		Groups:   []string{},
		Admins:   []string{owner},
		Meta:     map[string]any{},
	}
}

// CurrentVersion returns the most recently deployed version.
func (s *ServiceRecord) CurrentVersion() string {
	latest := s.Deployed
	for _, d := range s.Upgraded {
		if d.Time.After(latest.Time) {
			latest = d
		}
	}
	return latest.Version
}
