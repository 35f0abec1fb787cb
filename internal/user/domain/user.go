package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"org-membership-service/internal/platform/apperr"
)

const (
	maxNameLen  = 255
	maxPhoneLen = 20

	// bcrypt only accepts passwords up to 72 bytes.
	maxPasswordBytes = 72

	defaultOrgSuffix = "'s Organization"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// User is the core account entity. The credential hash lives on the local identity, never here.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Phone     string // optional
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Registration holds the raw, not yet validated fields of a sign-up request.
type Registration struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Phone     string
}

// NormalizeEmail trims and lower-cases an email so lookups and the unique index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize trims display fields and normalizes the email. Password is left untouched.
func (r *Registration) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Phone = strings.TrimSpace(r.Phone)
}

// Validate checks every field and returns a *apperr.ValidationError listing all of
// the failures, or nil. Call Normalize first.
func (r *Registration) Validate() error {
	v := &apperr.ValidationError{}
	switch {
	case r.Email == "":
		v.Add("email", "Email address is required")
	case !emailPattern.MatchString(r.Email):
		v.Add("email", "Enter a valid email address.")
	}
	validateName(v, "firstName", "First name", r.FirstName)
	validateName(v, "lastName", "Last name", r.LastName)
	switch {
	case r.Password == "":
		v.Add("password", "Password is required")
	case len(r.Password) > maxPasswordBytes:
		v.Add("password", "Ensure this field has no more than 72 bytes.")
	}
	if utf8.RuneCountInString(r.Phone) > maxPhoneLen {
		v.Add("phone", "Ensure this field has no more than 20 characters.")
	}
	return v.ErrOrNil()
}

func validateName(v *apperr.ValidationError, field, label, value string) {
	if value == "" {
		v.Add(field, label+" is required")
		return
	}
	if utf8.RuneCountInString(value) > maxNameLen {
		v.Add(field, "Ensure this field has no more than 255 characters.")
	}
}

// DefaultOrganizationName is the name given to the organization created at registration.
// The first name is cut short when needed so the result fits an organization name.
func (u *User) DefaultOrganizationName() string {
	first := u.FirstName
	if keep := maxNameLen - utf8.RuneCountInString(defaultOrgSuffix); utf8.RuneCountInString(first) > keep {
		first = string([]rune(first)[:keep])
	}
	return first + defaultOrgSuffix
}
