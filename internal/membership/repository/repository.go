package repository

import (
	"context"

	"org-membership-service/internal/membership/domain"
)

// Repository defines persistence for memberships.
type Repository interface {
	GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
	ListMembershipsByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error)
	// CreateMembership returns apperr.ErrAlreadyMember when the (org, user) pair already exists.
	CreateMembership(ctx context.Context, m *domain.Membership) error
}
