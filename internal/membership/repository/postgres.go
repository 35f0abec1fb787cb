package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"org-membership-service/internal/db"
	"org-membership-service/internal/membership/domain"
	"org-membership-service/internal/platform/apperr"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a membership repository that uses the given db (or transaction) for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetMembershipByUserAndOrg returns the membership for the given user and org, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error) {
	var m domain.Membership
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, org_id, created_at FROM memberships WHERE user_id = $1 AND org_id = $2`,
		userID, orgID,
	).Scan(&m.ID, &m.UserID, &m.OrgID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return &m, nil
}

// ListMembershipsByOrg returns all memberships for the given org. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListMembershipsByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, org_id, created_at FROM memberships WHERE org_id = $1 ORDER BY created_at ASC`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var out []*domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.OrgID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return out, nil
}

// CreateMembership persists the membership to the database. The membership must have ID set.
func (r *PostgresRepository) CreateMembership(ctx context.Context, m *domain.Membership) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (id, user_id, org_id, created_at) VALUES ($1, $2, $3, $4)`,
		m.ID, m.UserID, m.OrgID, m.CreatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err, db.ConstraintMembershipsPair) {
			return apperr.ErrAlreadyMember
		}
		return fmt.Errorf("create membership: %w", err)
	}
	return nil
}
