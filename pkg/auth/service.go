package auth

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/etm-murmansk/site/pkg/apperr"
	"github.com/etm-murmansk/site/pkg/config"
	"github.com/etm-murmansk/site/pkg/storage"
	"golang.org/x/crypto/bcrypt"
)

// Messages specific to the auth endpoints
const (
	MsgCredentialsRequired = "Логин и пароль обязательны"
	MsgLoggedOut           = "Выход выполнен"
)

// Service issues, validates and revokes session tokens
type Service struct {
	admins    AdminLookup
	tokens    TokenRepository
	generator *TokenGenerator
	audit     *AuditLogger

	lifetime time.Duration
	delayMin time.Duration
	delayMax time.Duration

	now    func() time.Time
	sleep  Sleeper
	jitter func(n int64) int64
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSleeper replaces the failed-login delay implementation
func WithSleeper(sleep Sleeper) Option {
	return func(s *Service) { s.sleep = sleep }
}

// WithAuditLogger enables security event logging
func WithAuditLogger(al *AuditLogger) Option {
	return func(s *Service) { s.audit = al }
}

// NewService creates the auth service
func NewService(admins AdminLookup, tokens TokenRepository, cfg config.AuthConfig, opts ...Option) *Service {
	s := &Service{
		admins:    admins,
		tokens:    tokens,
		generator: NewTokenGenerator(),
		lifetime:  cfg.TokenLifetime,
		delayMin:  cfg.LoginDelayMin,
		delayMax:  cfg.LoginDelayMax,
		now:       time.Now,
		sleep:     ContextSleeper,
		jitter:    rand.Int63n,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return storage.Timestamp(s.now())
}

// Login verifies the credentials and issues a new token
func (s *Service) Login(ctx context.Context, login, password string) (*Session, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		s.audit.Login(login, OutcomeMissingFields, 0)
		return nil, apperr.BadRequest(MsgCredentialsRequired)
	}

	admin, err := s.admins.GetByLogin(ctx, login)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Internal(fmt.Errorf("login lookup: %w", err))
	}
	if admin == nil || bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		s.audit.Login(login, OutcomeInvalidCredentials, 0)
		s.sleep(ctx, s.failureDelay())
		return nil, apperr.New(apperr.KindInvalidCredentials, apperr.MsgInvalidCredential)
	}

	token, err := s.generator.GenerateToken()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := s.clock()
	if _, err := s.tokens.DeleteExpiredForAdmin(ctx, admin.ID, now); err != nil {
		return nil, apperr.Internal(fmt.Errorf("login cleanup: %w", err))
	}

	session := &Session{
		Token:     token,
		ExpiresAt: now.Add(s.lifetime),
		Login:     login,
		AdminID:   admin.ID,
	}
	if err := s.tokens.Create(ctx, storage.Token{
		Token:     token,
		AdminID:   admin.ID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: now,
	}); err != nil {
		return nil, apperr.Internal(fmt.Errorf("login persist: %w", err))
	}

	s.audit.Login(login, OutcomeSuccess, admin.ID)
	return session, nil
}

func (s *Service) failureDelay() time.Duration {
	span := int64(s.delayMax - s.delayMin)
	if span <= 0 {
		return s.delayMin
	}
	return s.delayMin + time.Duration(s.jitter(span+1))
}

// Logout deletes the token. An empty or unknown token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.tokens.Delete(ctx, token); err != nil {
		return apperr.Internal(fmt.Errorf("logout: %w", err))
	}
	s.audit.Logout(tokenPrefix(token))
	return nil
}

// Check validates the token and slides its expiry to now + lifetime.
// Unknown and expired tokens fail with Unauthenticated ("Токен недействителен").
func (s *Service) Check(ctx context.Context, token string) (int64, error) {
	if !s.generator.ValidFormat(token) {
		s.audit.Check(OutcomeInvalid)
		return 0, apperr.Unauthenticated(apperr.MsgTokenInvalid)
	}

	stored, err := s.tokens.Get(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		s.audit.Check(OutcomeInvalid)
		return 0, apperr.Unauthenticated(apperr.MsgTokenInvalid)
	}
	if err != nil {
		return 0, apperr.Internal(fmt.Errorf("check token: %w", err))
	}

	now := s.clock()
	if !stored.Valid(now) {
		s.audit.Check(OutcomeExpired)
		return 0, apperr.Unauthenticated(apperr.MsgTokenInvalid)
	}

	if err := s.tokens.Extend(ctx, token, now.Add(s.lifetime)); err != nil {
		return 0, apperr.Internal(fmt.Errorf("renew token: %w", err))
	}

	s.audit.Check(OutcomeValid)
	return stored.AdminID, nil
}

// RequireAuth is Check with every authentication failure reported as
// "Требуется авторизация". Storage failures stay internal errors.
func (s *Service) RequireAuth(ctx context.Context, token string) (int64, error) {
	adminID, err := s.Check(ctx, token)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthenticated) {
			return 0, apperr.Unauthenticated(apperr.MsgAuthRequired)
		}
		return 0, err
	}
	return adminID, nil
}

// HashPassword hashes a password for storage with bcrypt
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
