package domain

import "time"

// Identity is a credential linked to a user. Only the local (email + password) provider is
// issued today; the provider column leaves room for federated logins.
type Identity struct {
	ID           string
	UserID       string
	Provider     IdentityProvider
	ProviderID   string // normalized email for local identities
	PasswordHash string // bcrypt hash; never serialized
	CreatedAt    time.Time
}

type IdentityProvider string

const (
	IdentityProviderLocal IdentityProvider = "local"
)
