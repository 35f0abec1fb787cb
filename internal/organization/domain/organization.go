package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"org-membership-service/internal/platform/apperr"
)

// Org is an organization. CreatedBy is the owning user and never changes after creation.
// Membership is stored separately; the creator is not implicitly a member.
type Org struct {
	ID          string
	Name        string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}

// Validate trims the name and description and returns a *apperr.ValidationError listing every failure.
func (o *Org) Validate() error {
	o.Name = strings.TrimSpace(o.Name)
	o.Description = strings.TrimSpace(o.Description)
	v := &apperr.ValidationError{}
	switch {
	case o.Name == "":
		v.Add("name", "Name is required")
	case utf8.RuneCountInString(o.Name) > 255:
		v.Add("name", "Ensure this field has no more than 255 characters.")
	}
	if o.CreatedBy == "" {
		v.Add("createdBy", "Creator is required")
	}
	return v.ErrOrNil()
}
