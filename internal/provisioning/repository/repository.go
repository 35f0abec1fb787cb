package repository

import (
	"context"

	identityrepo "org-membership-service/internal/identity/repository"
	membershiprepo "org-membership-service/internal/membership/repository"
	orgrepo "org-membership-service/internal/organization/repository"
	userrepo "org-membership-service/internal/user/repository"
)

// Repos groups the repositories that account provisioning writes through.
// Every field is bound to the same connection or transaction.
type Repos struct {
	Users       userrepo.Repository
	Identities  identityrepo.Repository
	Orgs        orgrepo.Repository
	Memberships membershiprepo.Repository
}

// Transactor runs fn with repositories bound to one transaction. If fn returns an error
// (or panics) nothing fn wrote is kept, and the error is returned unchanged.
type Transactor interface {
	InTx(ctx context.Context, fn func(r Repos) error) error
}
