package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-membership-service/internal/platform/apperr"
	"org-membership-service/internal/user/domain"
)

var userCols = []string{"id", "email", "first_name", "last_name", "phone", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewPostgresRepository(conn), mock
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "a@x.com", "A", "B", "555", now, now))

		u, err := repo.GetByID(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "u1", u.ID)
		assert.Equal(t, "a@x.com", u.Email)
		assert.Equal(t, "555", u.Phone)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("null phone", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "a@x.com", "A", "B", nil, now, now))

		u, err := repo.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "", u.Phone)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		u, err := repo.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs("u1").
			WillReturnError(errors.New("connection reset"))

		u, err := repo.GetByID(ctx, "u1")
		require.Error(t, err)
		assert.Nil(t, u)
		assert.Contains(t, err.Error(), "get user")
	})
}

func TestGetByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = lower\(\$1\)`).
		WithArgs("A@X.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "a@x.com", "A", "B", nil, now, now))

	u, err := repo.GetByEmail(context.Background(), "A@X.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	u := &domain.User{ID: "u1", Email: "a@x.com", FirstName: "A", LastName: "B", CreatedAt: now, UpdatedAt: now}

	t.Run("success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs("u1", "a@x.com", "A", "B", sql.NullString{}, now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, u))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		err := repo.Create(ctx, u)
		assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
	})

	t.Run("other error", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(errors.New("disk full"))

		err := repo.Create(ctx, u)
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperr.ErrDuplicateEmail)
	})
}
