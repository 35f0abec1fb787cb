package repository

import (
	"context"
	"database/sql"

	"org-membership-service/internal/db"
	identityrepo "org-membership-service/internal/identity/repository"
	membershiprepo "org-membership-service/internal/membership/repository"
	orgrepo "org-membership-service/internal/organization/repository"
	userrepo "org-membership-service/internal/user/repository"
)

// NewPostgresRepos returns Postgres repositories bound to conn, which may be a *sql.DB or *sql.Tx.
func NewPostgresRepos(conn db.DBTX) Repos {
	return Repos{
		Users:       userrepo.NewPostgresRepository(conn),
		Identities:  identityrepo.NewPostgresRepository(conn),
		Orgs:        orgrepo.NewPostgresRepository(conn),
		Memberships: membershiprepo.NewPostgresRepository(conn),
	}
}

// PostgresTransactor implements Transactor with database/sql transactions.
type PostgresTransactor struct {
	conn *sql.DB
}

// NewPostgresTransactor returns a Transactor that begins transactions on conn.
func NewPostgresTransactor(conn *sql.DB) *PostgresTransactor {
	return &PostgresTransactor{conn: conn}
}

// InTx begins a transaction, runs fn with repositories bound to it, and commits if fn succeeds.
func (t *PostgresTransactor) InTx(ctx context.Context, fn func(r Repos) error) error {
	return db.InTx(ctx, t.conn, func(tx *sql.Tx) error {
		return fn(NewPostgresRepos(tx))
	})
}
