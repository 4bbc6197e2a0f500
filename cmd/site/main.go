package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etm-murmansk/site/pkg/api"
	"github.com/etm-murmansk/site/pkg/auth"
	"github.com/etm-murmansk/site/pkg/config"
	"github.com/etm-murmansk/site/pkg/content"
	"github.com/etm-murmansk/site/pkg/middleware"
	"github.com/etm-murmansk/site/pkg/observability"
	"github.com/etm-murmansk/site/pkg/storage"
	"github.com/etm-murmansk/site/pkg/uploads"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	logger := observability.NewLogger(cfg.Log, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	logger.WithField("driver", cfg.Database.Driver).Info("database connected")

	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(ctx, db, cfg.Database.Driver); err != nil {
			logger.WithError(err).Fatal("failed to apply schema")
		}
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	authService := auth.NewService(
		storage.NewAdminStore(db),
		storage.NewTokenStore(db),
		cfg.Auth,
		auth.WithAuditLogger(auth.NewAuditLogger(logger, metrics)),
	)

	store, err := uploads.NewStore(ctx, cfg.Upload)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize upload storage")
	}
	logger.WithField("backend", cfg.Upload.Backend).Info("upload storage initialized")

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.WithError(err).Fatal("invalid redis URL")
		}
		if cfg.Redis.Password != "" {
			opts.Password = cfg.Redis.Password
		}
		if cfg.Redis.DB != 0 {
			opts.DB = cfg.Redis.DB
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	var healthDeps []observability.Dependency
	if pinger, ok := store.(observability.Pinger); ok {
		healthDeps = append(healthDeps, observability.Dependency{Name: "uploads", Pinger: pinger})
	}

	var limiter middleware.LoginLimiter
	if cfg.Auth.LoginLimitEnabled {
		if redisClient != nil {
			shared := middleware.NewRedisLoginLimiter(redisClient, cfg.Auth.LoginLimitBurst, cfg.Auth.LoginLimitWindow, "")
			healthDeps = append(healthDeps, observability.Dependency{Name: "redis", Pinger: shared})
			limiter = shared
			logger.Info("login limiter backed by redis")
		} else {
			memory := middleware.NewMemoryLoginLimiter(cfg.Auth.LoginLimitBurst, cfg.Auth.LoginLimitWindow)
			memory.StartCleanup(ctx)
			limiter = memory
			logger.Info("login limiter kept in memory")
		}
	}

	srv := api.NewServer(cfg, api.Dependencies{
		DB:           db,
		Auth:         authService,
		Uploads:      uploads.NewService(store, cfg.Upload, uploads.WithMetrics(metrics)),
		Sanitizer:    content.NewSanitizer(),
		Metrics:      metrics,
		Logger:       logger,
		LoginLimiter: limiter,
	})

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db, healthDeps...))
	observability.RegisterMetricsEndpoint(healthMux, registry)

	go recordDBStats(ctx, logger, db, metrics)

	apiServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	healthServer := &http.Server{
		Addr:              cfg.Server.HealthAddr(),
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithFields(logrus.Fields{
		"addr":   apiServer.Addr,
		"health": healthServer.Addr,
		"prefix": cfg.Server.APIPrefix,
	}).Info("starting site API")

	if err := observability.Serve(ctx, logger, cfg.Server.ShutdownTimeout, apiServer, healthServer); err != nil {
		logger.WithError(err).Fatal("server failed")
	}
	logger.Info("site API stopped")
}
