package auth

import (
	"context"
	"time"

	"github.com/etm-murmansk/site/pkg/contextkeys"
	"github.com/etm-murmansk/site/pkg/storage"
)

// Session is the result of a successful login
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Login     string    `json:"login"`
	AdminID   int64     `json:"-"`
}

// AdminLookup finds administrators by login
type AdminLookup interface {
	GetByLogin(ctx context.Context, login string) (*storage.Admin, error)
}

// TokenRepository persists session tokens
type TokenRepository interface {
	Create(ctx context.Context, t storage.Token) error
	Get(ctx context.Context, token string) (*storage.Token, error)
	Extend(ctx context.Context, token string, expiresAt time.Time) error
	Delete(ctx context.Context, token string) error
	DeleteExpiredForAdmin(ctx context.Context, adminID int64, now time.Time) (int64, error)
}

// Sleeper pauses for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration)

// ContextSleeper is the default Sleeper
func ContextSleeper(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// WithAdminID stores the authenticated admin id in the context
func WithAdminID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, contextkeys.AdminIDKey, id)
}

// AdminIDFromContext returns the authenticated admin id, if any
func AdminIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(contextkeys.AdminIDKey).(int64)
	return id, ok
}
