package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type loginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Login     string    `json:"login"`
}

// Login exchanges credentials for a token and stores the session
func (c *Client) Login(ctx context.Context, login, password string) (Session, error) {
	req, err := jsonRequest(http.MethodPost, "auth/login", map[string]string{
		"login":    login,
		"password": password,
	})
	if err != nil {
		return Session{}, err
	}
	req.noAuth = true

	body, err := c.do(ctx, req)
	if err != nil {
		return Session{}, err
	}

	var resp loginResponse
	if err := decode(body, &resp); err != nil {
		return Session{}, err
	}
	if !resp.Success || resp.Token == "" {
		return Session{}, &Error{Kind: KindOther, Status: http.StatusOK, Message: "login response carries no token"}
	}

	s := Session{Token: resp.Token, ExpiresAt: resp.ExpiresAt, Login: resp.Login}
	if s.Login == "" {
		s.Login = login
	}
	if err := c.tokens.Save(s); err != nil {
		return Session{}, err
	}
	c.ClearCache()
	return s, nil
}

// Logout revokes the token on the server when possible and always forgets
// it locally. Server failures are logged, not returned.
func (c *Client) Logout(ctx context.Context) error {
	s, err := c.tokens.Load()
	if err == nil && s.Token != "" {
		req := request{method: http.MethodPost, path: "auth/logout", retries: 0}
		if _, err := c.do(ctx, req); err != nil {
			c.logger.WithError(err).Warn("server logout failed, clearing local session anyway")
		}
	}
	c.ClearCache()
	return c.tokens.Clear()
}

// CheckSession asks the server whether the stored token is still valid,
// which also extends it. The session is cleared only when the server
// answers with an explicit error status; network failures leave it in
// place and are returned.
func (c *Client) CheckSession(ctx context.Context) (bool, error) {
	s, err := c.tokens.Load()
	if errors.Is(err, ErrNoSession) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	req := request{method: http.MethodGet, path: "auth/check", retries: 0}
	_, err = c.do(ctx, req)
	if err == nil {
		return true, nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 && apiErr.Message != "" {
		if clearErr := c.tokens.Clear(); clearErr != nil {
			return false, fmt.Errorf("failed to clear session: %w", clearErr)
		}
		c.logger.WithField("login", s.Login).Info("session is no longer valid")
		return false, nil
	}
	return false, err
}
