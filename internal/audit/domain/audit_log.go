package domain

import "time"

// AuditLog is one recorded account or organization event. OrgID is audit.SentinelOrgID
// for events that are not scoped to an organization (registration, login).
type AuditLog struct {
	ID        string
	OrgID     string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
