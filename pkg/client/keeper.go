package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultKeepInterval matches how often the admin pages re-check the session
const DefaultKeepInterval = 30 * time.Minute

// Keeper periodically checks the session so the server keeps extending it
type Keeper struct {
	client   *Client
	interval time.Duration
	timeout  time.Duration
	onExpire func()
	logger   logrus.FieldLogger

	mu      sync.Mutex
	cron    *cron.Cron
	expired bool
}

// KeeperOption configures a Keeper
type KeeperOption func(*Keeper)

// WithInterval sets how often the session is checked. Non-positive values
// keep DefaultKeepInterval.
func WithInterval(d time.Duration) KeeperOption {
	return func(k *Keeper) {
		if d > 0 {
			k.interval = d
		}
	}
}

// OnExpire registers a callback run once when the server rejects the session
func OnExpire(fn func()) KeeperOption {
	return func(k *Keeper) { k.onExpire = fn }
}

// NewKeeper creates a keeper for c. It does nothing until Start.
func NewKeeper(c *Client, opts ...KeeperOption) *Keeper {
	k := &Keeper{
		client:   c,
		interval: DefaultKeepInterval,
		timeout:  DefaultTimeout,
		logger:   c.logger,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Schedule is the cron spec the keeper runs on
func (k *Keeper) Schedule() string {
	return fmt.Sprintf("@every %s", k.interval)
}

// Start schedules the checks. It does not run one immediately.
func (k *Keeper) Start() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.cron != nil {
		return fmt.Errorf("keeper already started")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(k.Schedule(), func() { k.Check(context.Background()) }); err != nil {
		return fmt.Errorf("failed to schedule session check: %w", err)
	}
	c.Start()
	k.cron = c
	k.logger.WithField("schedule", k.Schedule()).Info("session keeper started")
	return nil
}

// Stop halts the schedule and waits for a running check to finish
func (k *Keeper) Stop() {
	k.mu.Lock()
	c := k.cron
	k.cron = nil
	k.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	k.logger.Info("session keeper stopped")
}

// Check runs a single session check and reports whether the session is
// still valid
func (k *Keeper) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	ok, err := k.client.CheckSession(ctx)
	if err != nil {
		k.logger.WithError(err).Warn("session check failed, keeping session")
		return false
	}
	if ok {
		k.mu.Lock()
		k.expired = false
		k.mu.Unlock()
		k.logger.Debug("session extended")
		return true
	}

	k.mu.Lock()
	first := !k.expired
	k.expired = true
	k.mu.Unlock()
	if first && k.onExpire != nil {
		k.onExpire()
	}
	return false
}
