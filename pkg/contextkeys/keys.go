// Package contextkeys provides centralized context key definitions
//
// All context keys used across the site are defined here, next to the
// package that sets them and the packages that read them.
//
// USAGE PATTERN:
//
//	import "github.com/etm-murmansk/site/pkg/contextkeys"
//	ctx = context.WithValue(ctx, contextkeys.AdminIDKey, id)
//	id, ok := ctx.Value(contextkeys.AdminIDKey).(int64)
//
// Prefer the typed helpers in observability and auth over raw lookups.
package contextkeys

// Key is the type for context keys to prevent collisions
type Key string

const (
	// RequestIDKey contains the request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware
	// Used by: request logging, error responses, audit log
	// Type: string
	RequestIDKey Key = "request_id"

	// LoggerKey contains the request-scoped logger
	// Set by: httputil.RequestIDMiddleware
	// Used by: handlers via observability.FromContext
	// Type: *logrus.Entry
	LoggerKey Key = "logger"

	// AdminIDKey contains the id of the authenticated administrator
	// Set by: the API server's bearer-token guard on protected routes
	// Used by: content handlers, audit log
	// Type: int64
	AdminIDKey Key = "admin_id"
)
