package api

import (
	"net/http"
	"time"

	"github.com/etm-murmansk/site/pkg/apperr"
	"github.com/etm-murmansk/site/pkg/auth"
	"github.com/etm-murmansk/site/pkg/content"
	"github.com/etm-murmansk/site/pkg/httputil"
	"github.com/etm-murmansk/site/pkg/middleware"
)

// LoginResponse is returned by POST auth/login
type LoginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Login     string    `json:"login"`
}

// CheckResponse is returned by GET auth/check
type CheckResponse struct {
	Success bool  `json:"success"`
	AdminID int64 `json:"admin_id"`
}

var authActions = map[string]bool{"login": true, "logout": true, "check": true}

func (s *Server) authRoutes() []Route {
	var login http.Handler = http.HandlerFunc(s.login)
	if s.limiter != nil {
		login = middleware.LoginLimit(s.limiter, s.limitWindow)(login)
	}

	return []Route{
		{Kind: RouteAuth, Method: http.MethodPost, Resource: "auth/login", Handler: login.ServeHTTP},
		{Kind: RouteAuth, Method: http.MethodPost, Resource: "auth/logout", Handler: s.logout},
		{Kind: RouteAuth, Method: http.MethodGet, Resource: "auth/check", Handler: s.check},
	}
}

// login handles POST auth/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	p, err := content.ReadPayload(r.Body)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	session, err := s.auth.Login(r.Context(), p.String("login"), p.String("password"))
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		Success:   true,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Login:     session.Login,
	})
}

// logout handles POST auth/logout. A missing or unknown token still succeeds.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), httputil.BearerToken(r)); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, auth.MsgLoggedOut)
}

// check handles GET auth/check
func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	adminID, err := s.auth.Check(r.Context(), httputil.BearerToken(r))
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CheckResponse{Success: true, AdminID: adminID})
}

// unknownAuthAction answers auth/ paths that matched no route: 405 for a
// known action, 404 otherwise
func (s *Server) unknownAuthAction(w http.ResponseWriter, r *http.Request) {
	if authActions[httputil.PathVar(r, "action")] {
		methodNotAllowed(w, r)
		return
	}
	httputil.WriteAppError(w, r, apperr.NotFound(apperr.MsgUnknownAction))
}
