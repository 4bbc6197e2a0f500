// Package httputil provides the JSON envelope, request parsing helpers and
// cross-cutting middleware shared by the site API.
//
// # Responses
//
// Every response body is JSON with Content-Type application/json; charset=utf-8.
// Errors use the {"error": message} envelope:
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteAppError(w, r, err) // status and message from apperr
//
// # Request Parsing
//
//	id, ok := httputil.PathInt64(r, "id")
//	limit := httputil.QueryInt(r, "limit", 100)
//	token := httputil.BearerToken(r)
//
// # Middleware
//
//	handler = httputil.Chain(
//		httputil.RecoveryMiddleware(logger),
//		httputil.RequestIDMiddleware(logger),
//		httputil.LoggingMiddleware(),
//		httputil.CORSMiddleware(cfg.CORS.AllowedOrigins),
//	)(router)
package httputil
