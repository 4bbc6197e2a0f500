// Package auth implements administrator authentication for the site API:
// password login issuing opaque bearer tokens, sliding-expiry validation,
// logout, and the RequireAuth gate used by every mutating endpoint.
//
// # Tokens
//
// A token is 32 random bytes rendered as 64 lowercase hex characters. It
// carries no claims; the token store is the only source of truth. A token
// is valid while its expiry is strictly after the current time, and every
// successful Check moves the expiry to now + lifetime.
//
//	svc := auth.NewService(admins, tokens, cfg.Auth,
//		auth.WithAuditLogger(auth.NewAuditLogger(logger, metrics)),
//	)
//	session, err := svc.Login(ctx, "admin", password)
//	adminID, err := svc.RequireAuth(ctx, session.Token)
//
// # Failed logins
//
// An unknown login or a wrong password waits a random delay between
// LoginDelayMin and LoginDelayMax before InvalidCredentials is returned.
// The delay is not a rate limiter; see pkg/middleware for that.
package auth
