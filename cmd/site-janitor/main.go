package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/etm-murmansk/site/pkg/config"
	"github.com/etm-murmansk/site/pkg/janitor"
	"github.com/etm-murmansk/site/pkg/observability"
	"github.com/etm-murmansk/site/pkg/storage"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var (
	schedule = flag.String("schedule", janitor.DefaultSchedule, "Cron schedule for the expired token purge")
	runOnce  = flag.Bool("run-once", false, "Purge once and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	logger := observability.NewLogger(cfg.Log, os.Stdout)

	db, err := storage.Open(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	j := janitor.New(storage.NewTokenStore(db), logger)

	if *runOnce {
		if _, err := j.Purge(context.Background()); err != nil {
			logger.WithError(err).Fatal("purge failed")
		}
		return
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := j.Schedule(c, *schedule); err != nil {
		logger.WithError(err).Fatal("failed to schedule purge")
	}
	c.Start()
	logger.WithField("schedule", *schedule).Info("site janitor started")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	<-c.Stop().Done()
	logger.Info("site janitor stopped")
}
