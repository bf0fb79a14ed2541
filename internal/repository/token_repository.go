package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/vidly/internal/model"
)

// ErrRefreshInvalid covers unknown, revoked and expired refresh tokens.
// Callers answer all three the same way.
var ErrRefreshInvalid = errors.New("refresh token invalid")

// TokenRepo keeps the SHA-256 hashes of staff refresh tokens.  Raw tokens
// never reach the database.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// lookup loads the token row and checks it is still usable at now.
func lookup(ctx context.Context, q queryRower, tokenHash string, now time.Time, forUpdate bool) (*model.RefreshToken, error) {
	query := "SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash=?"
	if forUpdate {
		query += " FOR UPDATE"
	}
	var (
		t       model.RefreshToken
		revoked sql.NullTime
	)
	err := q.QueryRowContext(ctx, query, tokenHash).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &revoked, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	if revoked.Valid {
		rt := revoked.Time
		t.RevokedAt = &rt
		return nil, ErrRefreshInvalid
	}
	if !now.Before(t.ExpiresAt) {
		return nil, ErrRefreshInvalid
	}
	return &t, nil
}

// StoreRefresh records the hash of a newly issued refresh token.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp.UTC())
	return err
}

// ValidateRefresh returns the usable token with tokenHash at now, or
// ErrRefreshInvalid.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (*model.RefreshToken, error) {
	return lookup(ctx, r.DB, tokenHash, now, false)
}

// Rotate revokes oldHash and stores newHash for the same user in one
// transaction, so a refresh token can be exchanged at most once.  It
// returns the owning user id.
func (r *TokenRepo) Rotate(ctx context.Context, oldHash, newHash string, newExp, now time.Time) (userID uint64, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	old, err := lookup(ctx, tx, oldHash, now, true)
	if err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx, "UPDATE refresh_tokens SET revoked_at=? WHERE id=?", now.UTC(), old.ID); err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		old.UserID, newHash, newExp.UTC()); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return old.UserID, nil
}

// RevokeByHash revokes a single token.  Revoking an already revoked token
// is not an error.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=? WHERE token_hash=? AND revoked_at IS NULL",
		now.UTC(), tokenHash)
	return err
}

// RevokeAllForUser signs a staff member out of every session.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=? WHERE user_id=? AND revoked_at IS NULL",
		now.UTC(), userID)
	return err
}

// PurgeExpired deletes tokens that expired before cutoff and reports how
// many rows went.
func (r *TokenRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE expires_at < ?", cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
