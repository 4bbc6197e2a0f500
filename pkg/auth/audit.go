package auth

import (
	"github.com/etm-murmansk/site/pkg/observability"
	"github.com/sirupsen/logrus"
)

// Audit outcomes
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeMissingFields      = "missing_fields"
	OutcomeValid              = "valid"
	OutcomeInvalid            = "invalid"
	OutcomeExpired            = "expired"
)

// AuditLogger records security events as structured log lines and
// Prometheus counters. A nil *AuditLogger discards everything.
type AuditLogger struct {
	logger  logrus.FieldLogger
	metrics *observability.Metrics
}

// NewAuditLogger creates an audit logger. metrics may be nil.
func NewAuditLogger(logger logrus.FieldLogger, metrics *observability.Metrics) *AuditLogger {
	return &AuditLogger{logger: logger, metrics: metrics}
}

// Login records a login attempt
func (al *AuditLogger) Login(login, outcome string, adminID int64) {
	if al == nil {
		return
	}
	if al.metrics != nil {
		al.metrics.LoginAttempts.WithLabelValues(outcome).Inc()
	}

	entry := al.logger.WithFields(logrus.Fields{
		"event":   "auth.login",
		"login":   login,
		"outcome": outcome,
	})
	if adminID != 0 {
		entry = entry.WithField("admin_id", adminID)
	}
	if outcome == OutcomeSuccess {
		entry.Info("admin logged in")
	} else {
		entry.Warn("login rejected")
	}
}

// Logout records a logout
func (al *AuditLogger) Logout(tokenPrefix string) {
	if al == nil {
		return
	}
	al.logger.WithFields(logrus.Fields{
		"event": "auth.logout",
		"token": tokenPrefix,
	}).Info("admin logged out")
}

// Check records a token validation
func (al *AuditLogger) Check(outcome string) {
	if al == nil {
		return
	}
	if al.metrics != nil {
		al.metrics.TokenChecks.WithLabelValues(outcome).Inc()
	}
	if outcome != OutcomeValid {
		al.logger.WithFields(logrus.Fields{
			"event":   "auth.check",
			"outcome": outcome,
		}).Debug("token rejected")
	}
}

// tokenPrefix shortens a token for logs
func tokenPrefix(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
