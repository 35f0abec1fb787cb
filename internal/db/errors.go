package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names declared in migrations/000001_init.up.sql.
const (
	ConstraintUsersEmail      = "users_email_key"
	ConstraintMembershipsPair = "memberships_org_id_user_id_key"
)

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique violation on the named constraint.
// An empty constraint matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
