package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"org-membership-service/internal/db"
	"org-membership-service/internal/platform/apperr"
	"org-membership-service/internal/user/domain"
)

const userColumns = `id, email, first_name, last_name, phone, created_at, updated_at`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a user repository that uses the given db (or transaction) for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail returns the user with the given normalized email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email)
	return scanUser(row)
}

// Create persists the user to the database. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	phone := sql.NullString{String: u.Phone, Valid: u.Phone != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.FirstName, u.LastName, phone, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err, db.ConstraintUsersEmail) {
			return apperr.ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u     domain.User
		phone sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &phone, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if phone.Valid {
		u.Phone = phone.String
	}
	return &u, nil
}
