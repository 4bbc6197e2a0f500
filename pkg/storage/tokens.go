package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Token is a persisted session token
type Token struct {
	Token     string
	AdminID   int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Valid reports whether the token expires strictly after now
func (t *Token) Valid(now time.Time) bool {
	return t.ExpiresAt.After(now)
}

// TokenStore persists session tokens
type TokenStore struct {
	db *sql.DB
}

// NewTokenStore creates a token store
func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{db: db}
}

// Create inserts a new token
func (s *TokenStore) Create(ctx context.Context, t Token) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_tokens (token, admin_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		t.Token, t.AdminID, Timestamp(t.ExpiresAt), Timestamp(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

// Get returns the token row regardless of expiry, or ErrNotFound
func (s *TokenStore) Get(ctx context.Context, token string) (*Token, error) {
	var t Token
	err := s.db.QueryRowContext(ctx,
		`SELECT token, admin_id, expires_at, created_at FROM auth_tokens WHERE token = $1`,
		token,
	).Scan(&t.Token, &t.AdminID, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}

// Extend sets a new expiry on an existing token
func (s *TokenStore) Extend(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE auth_tokens SET expires_at = $1 WHERE token = $2`,
		Timestamp(expiresAt), token,
	)
	if err != nil {
		return fmt.Errorf("failed to extend token: %w", err)
	}
	return nil
}

// Delete removes a token. Deleting an absent token is not an error.
func (s *TokenStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// DeleteExpiredForAdmin removes the admin's tokens that expired at or before now
func (s *TokenStore) DeleteExpiredForAdmin(ctx context.Context, adminID int64, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_tokens WHERE admin_id = $1 AND expires_at <= $2`,
		adminID, Timestamp(now),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return res.RowsAffected()
}

// DeleteExpired removes every token that expired at or before now
func (s *TokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE expires_at <= $1`, Timestamp(now))
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired tokens: %w", err)
	}
	return res.RowsAffected()
}
