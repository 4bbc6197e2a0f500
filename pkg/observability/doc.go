// Package observability provides structured logging, Prometheus metrics,
// health probes and graceful shutdown for the site binaries.
//
// # Logging
//
//	logger := observability.NewLogger(cfg.Log, os.Stdout)
//	logger.WithField("admin_id", id).Info("login succeeded")
//
// Request-scoped loggers are stored in the context by the request id
// middleware and retrieved with FromContext.
//
// # Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	handler = observability.HTTPMetricsMiddleware(metrics)(handler)
//
// Auth outcomes are counted through metrics.LoginAttempts and
// metrics.TokenChecks.
//
// # Health
//
// HealthChecker exposes /healthz (liveness) and /readyz (database ping plus
// the configured dependencies).
package observability
