package domain

import (
	"time"
)

// Membership links a user to an organization's member set. (OrgID, UserID) is unique.
type Membership struct {
	ID        string
	UserID    string
	OrgID     string
	CreatedAt time.Time
}
