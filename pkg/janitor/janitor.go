// Package janitor removes expired session tokens on a schedule. Logins
// already delete the expired tokens of the admin logging in; the janitor
// covers admins who stop logging in.
package janitor

import (
	"context"
	"fmt"
	"time"

	"github.com/etm-murmansk/site/pkg/observability"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSchedule runs the purge at minute 17 of every hour
const DefaultSchedule = "17 * * * *"

// TokenPurger deletes every token that expired before now
type TokenPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Janitor deletes expired admin tokens
type Janitor struct {
	tokens  TokenPurger
	logger  logrus.FieldLogger
	metrics *observability.Metrics
	now     func() time.Time
	timeout time.Duration
}

// Option configures a Janitor
type Option func(*Janitor)

// WithMetrics counts purged tokens in m
func WithMetrics(m *observability.Metrics) Option {
	return func(j *Janitor) { j.metrics = m }
}

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(j *Janitor) { j.now = now }
}

// New creates a janitor purging through tokens
func New(tokens TokenPurger, logger logrus.FieldLogger, opts ...Option) *Janitor {
	j := &Janitor{
		tokens:  tokens,
		logger:  logger,
		now:     time.Now,
		timeout: time.Minute,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Purge deletes expired tokens once and returns how many were removed
func (j *Janitor) Purge(ctx context.Context) (removed int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = observability.PanicError(r)
			j.logger.WithError(err).Error("token purge panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := j.now()
	removed, err = j.tokens.DeleteExpired(ctx, start)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired tokens: %w", err)
	}
	if j.metrics != nil {
		j.metrics.TokensPurged.Add(float64(removed))
	}

	j.logger.WithFields(logrus.Fields{
		"removed":  removed,
		"duration": time.Since(start).String(),
	}).Info("expired tokens purged")
	return removed, nil
}

// Schedule registers the purge on c under spec
func (j *Janitor) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		if _, err := j.Purge(context.Background()); err != nil {
			j.logger.WithError(err).Error("scheduled token purge failed")
		}
	})
	if err != nil {
		return 0, fmt.Errorf("invalid purge schedule %q: %w", spec, err)
	}
	return id, nil
}
