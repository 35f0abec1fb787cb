package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"org-membership-service/internal/db"
	"org-membership-service/internal/identity/domain"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns an identity repository that uses the given db (or transaction) for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetByUserAndProvider returns the identity for the given user and provider, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUserAndProvider(ctx context.Context, userID string, provider domain.IdentityProvider) (*domain.Identity, error) {
	var (
		i  domain.Identity
		ph sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, provider, provider_id, password_hash, created_at
		FROM identities WHERE user_id = $1 AND provider = $2`,
		userID, string(provider),
	).Scan(&i.ID, &i.UserID, &i.Provider, &i.ProviderID, &ph, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}
	if ph.Valid {
		i.PasswordHash = ph.String
	}
	return &i, nil
}

// Create persists the identity to the database. The identity must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, i *domain.Identity) error {
	ph := sql.NullString{String: i.PasswordHash, Valid: i.PasswordHash != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO identities (id, user_id, provider, provider_id, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		i.ID, i.UserID, string(i.Provider), i.ProviderID, ph, i.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}
