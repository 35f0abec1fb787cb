package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"org-membership-service/internal/db"
	"org-membership-service/internal/organization/domain"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns an organization repository that uses the given db (or transaction) for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetOrganizationByID returns the organization for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetOrganizationByID(ctx context.Context, id string) (*domain.Org, error) {
	var (
		o    domain.Org
		desc sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_by, created_at FROM organizations WHERE id = $1`, id,
	).Scan(&o.ID, &o.Name, &desc, &o.CreatedBy, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	o.Description = desc.String
	return &o, nil
}

// CreateOrganization persists the organization to the database. The organization must have ID set.
func (r *PostgresRepository) CreateOrganization(ctx context.Context, o *domain.Org) error {
	desc := sql.NullString{String: o.Description, Valid: o.Description != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, description, created_by, created_at) VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.Name, desc, o.CreatedBy, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

// ListForUser returns every organization created by userID or having userID as a member,
// oldest first. UNION removes the duplicate row when the creator is also a member.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Org, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, created_by, created_at FROM organizations WHERE created_by = $1
		UNION
		SELECT o.id, o.name, o.description, o.created_by, o.created_at
		FROM organizations o JOIN memberships m ON m.org_id = o.id
		WHERE m.user_id = $1
		ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Org
	for rows.Next() {
		var (
			o    domain.Org
			desc sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.Name, &desc, &o.CreatedBy, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		o.Description = desc.String
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return out, nil
}
