package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/etm-murmansk/site/pkg/observability"
	"github.com/sirupsen/logrus"
)

const dbStatsInterval = 15 * time.Second

func recordDBStats(ctx context.Context, logger logrus.FieldLogger, db *sql.DB, metrics *observability.Metrics) {
	defer observability.RecoverPanic(logger, "db stats")

	ticker := time.NewTicker(dbStatsInterval)
	defer ticker.Stop()
	for {
		observability.RecordDBStats(db, metrics)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
