package repository

import (
	"context"

	"org-membership-service/internal/organization/domain"
)

// Repository defines persistence for organizations.
type Repository interface {
	GetOrganizationByID(ctx context.Context, id string) (*domain.Org, error)
	CreateOrganization(ctx context.Context, o *domain.Org) error
	// ListForUser returns organizations the user created or is a member of, without duplicates.
	ListForUser(ctx context.Context, userID string) ([]*domain.Org, error)
}
