package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Admin is an administrator account
type Admin struct {
	ID           int64
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}

// AdminStore reads and writes administrator credentials
type AdminStore struct {
	db *sql.DB
}

// NewAdminStore creates an admin store
func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db}
}

// GetByLogin returns the admin with the given login, or ErrNotFound
func (s *AdminStore) GetByLogin(ctx context.Context, login string) (*Admin, error) {
	var a Admin
	err := s.db.QueryRowContext(ctx,
		`SELECT id, login, password_hash, created_at FROM admins WHERE login = $1`,
		login,
	).Scan(&a.ID, &a.Login, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &a, nil
}

// SetPassword creates the admin or replaces its password hash. It reports
// whether a new account was created.
func (s *AdminStore) SetPassword(ctx context.Context, login, passwordHash string, now time.Time) (id int64, created bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `SELECT id FROM admins WHERE login = $1`, login).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx,
			`INSERT INTO admins (login, password_hash, created_at) VALUES ($1, $2, $3) RETURNING id`,
			login, passwordHash, Timestamp(now),
		).Scan(&id)
		if err != nil {
			return 0, false, fmt.Errorf("failed to insert admin: %w", err)
		}
		created = true
	case err != nil:
		return 0, false, fmt.Errorf("failed to look up admin: %w", err)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE admins SET password_hash = $1 WHERE id = $2`,
			passwordHash, id,
		); err != nil {
			return 0, false, fmt.Errorf("failed to update admin: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, created, nil
}
