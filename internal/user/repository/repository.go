package repository

import (
	"context"

	"org-membership-service/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail expects a normalized (lower-case) email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create returns apperr.ErrDuplicateEmail when the email unique index rejects the row.
	Create(ctx context.Context, u *domain.User) error
}
