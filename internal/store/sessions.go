package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository persists browser sessions and their OAuth tokens.
type SessionRepository interface {
	Create(ctx context.Context, session Session) error
	Get(ctx context.Context, id string) (*Session, error)
	UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, tokenExpiry time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepo struct {
	pool *pgxpool.Pool
}

func (r *sessionRepo) Create(ctx context.Context, session Session) error {
	defer observeDB(ctx, "sessions.create")()

	_, err := r.pool.Exec(ctx, `
INSERT INTO sessions (id, subject, email, display_name, picture, access_token, refresh_token, token_expiry, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		session.ID, session.Subject, session.Email, session.DisplayName, session.Picture,
		session.AccessToken, session.RefreshToken, session.TokenExpiry,
		session.CreatedAt, session.ExpiresAt)
	return err
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*Session, error) {
	defer observeDB(ctx, "sessions.get")()

	var s Session
	err := r.pool.QueryRow(ctx, `
SELECT id, subject, email, display_name, picture, access_token, refresh_token, token_expiry, created_at, expires_at
FROM sessions WHERE id = $1`, id).Scan(
		&s.ID, &s.Subject, &s.Email, &s.DisplayName, &s.Picture,
		&s.AccessToken, &s.RefreshToken, &s.TokenExpiry,
		&s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateTokens persists a refreshed token pair. A blank refresh token
// keeps the stored one; Google omits it on refresh responses.
func (r *sessionRepo) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, tokenExpiry time.Time) error {
	defer observeDB(ctx, "sessions.update_tokens")()

	_, err := r.pool.Exec(ctx, `
UPDATE sessions
SET access_token = $2,
    refresh_token = CASE WHEN $3 = '' THEN refresh_token ELSE $3 END,
    token_expiry = $4
WHERE id = $1`, id, accessToken, refreshToken, tokenExpiry)
	return err
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	defer observeDB(ctx, "sessions.delete")()

	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (r *sessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	defer observeDB(ctx, "sessions.delete_expired")()

	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
