package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenCols = []string{"id", "user_id", "token_hash", "expires_at", "revoked_at", "created_at"}

func newAuthMock(t *testing.T) (*TokenRepo, *UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTokenRepo(db), NewUserRepo(db), mock
}

func TestTokenRepo_ValidateRefresh(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		wantErr error
	}{
		{"usable", sqlmock.NewRows(tokenCols).AddRow(int64(1), int64(7), "h", now.Add(time.Hour), nil, now.Add(-time.Hour)), nil},
		{"unknown", sqlmock.NewRows(tokenCols), ErrRefreshInvalid},
		{"revoked", sqlmock.NewRows(tokenCols).AddRow(int64(1), int64(7), "h", now.Add(time.Hour), now.Add(-time.Minute), now.Add(-time.Hour)), ErrRefreshInvalid},
		{"expired", sqlmock.NewRows(tokenCols).AddRow(int64(1), int64(7), "h", now, nil, now.Add(-time.Hour)), ErrRefreshInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, mock := newAuthMock(t)
			mock.ExpectQuery(`SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash=\?`).
				WithArgs("h").
				WillReturnRows(tt.rows)

			tok, err := repo.ValidateRefresh(context.Background(), "h", now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint64(7), tok.UserID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTokenRepo_Rotate(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	exp := now.Add(7 * 24 * time.Hour)

	t.Run("exchanges once", func(t *testing.T) {
		repo, _, mock := newAuthMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash=\? FOR UPDATE`).
			WithArgs("old").
			WillReturnRows(sqlmock.NewRows(tokenCols).AddRow(int64(3), int64(9), "old", now.Add(time.Hour), nil, now))
		mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at=\? WHERE id=\?`).
			WithArgs(now, int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO refresh_tokens`).
			WithArgs(int64(9), "new", exp).
			WillReturnResult(sqlmock.NewResult(4, 1))
		mock.ExpectCommit()

		uid, err := repo.Rotate(context.Background(), "old", "new", exp, now)
		require.NoError(t, err)
		assert.Equal(t, uint64(9), uid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("revoked token rolls back", func(t *testing.T) {
		repo, _, mock := newAuthMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM refresh_tokens`).
			WillReturnRows(sqlmock.NewRows(tokenCols).AddRow(int64(3), int64(9), "old", now.Add(time.Hour), now, now))
		mock.ExpectRollback()

		_, err := repo.Rotate(context.Background(), "old", "new", exp, now)
		assert.ErrorIs(t, err, ErrRefreshInvalid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTokenRepo_PurgeExpired(t *testing.T) {
	repo, _, mock := newAuthMock(t)
	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE expires_at < \?`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 5))

	n, err := repo.PurgeExpired(context.Background(), cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestUserRepo_Bootstrap(t *testing.T) {
	repo := func(t *testing.T, existing int64) (*UserRepo, sqlmock.Sqlmock) {
		_, users, mock := newAuthMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(existing))
		return users, mock
	}

	t.Run("empty store", func(t *testing.T) {
		users, mock := repo(t, 0)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs("boss@vidly.test", sqlmock.AnyArg(), "MANAGER").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		id, err := users.Bootstrap(context.Background(), " Boss@Vidly.test ", "password123", 4)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store already has accounts", func(t *testing.T) {
		users, mock := repo(t, 3)
		mock.ExpectRollback()

		_, err := users.Bootstrap(context.Background(), "intruder@vidly.test", "password123", 4)
		assert.ErrorIs(t, err, ErrRegistrationClosed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short password never opens a transaction", func(t *testing.T) {
		_, users, mock := newAuthMock(t)
		_, err := users.Bootstrap(context.Background(), "boss@vidly.test", "short", 4)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepo_Create(t *testing.T) {
	_, users, mock := newAuthMock(t)
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("clerk@vidly.test", sqlmock.AnyArg(), "STAFF").
		WillReturnResult(sqlmock.NewResult(4, 1))

	id, err := users.Create(context.Background(), "Clerk@vidly.test", "password123", 4, "STAFF")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), id)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	_, err = users.Create(context.Background(), "clerk@vidly.test", "password123", 4, "STAFF")
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmailNotFound(t *testing.T) {
	_, users, mock := newAuthMock(t)
	mock.ExpectQuery(`FROM users WHERE email=\?`).
		WithArgs("nobody@vidly.test").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := users.GetByEmail(context.Background(), "NOBODY@vidly.test")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
