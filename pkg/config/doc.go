// Package config loads the site configuration once at startup.
//
// # Sources
//
// Defaults come from Default. An optional YAML file named by SITE_CONFIG_FILE
// is applied on top of them, then environment variables override both:
//
//	SITE_HOST="0.0.0.0"
//	SITE_PORT="8080"
//	SITE_HEALTH_PORT="9090"
//	SITE_API_PREFIX="/api"
//
//	SITE_DB_DRIVER="postgres"          # postgres, sqlite3
//	SITE_DB_DSN="postgres://localhost/etmsite?sslmode=disable"
//	SITE_DB_MAX_OPEN_CONNS="10"
//
//	SITE_TOKEN_LIFETIME="24h"
//	SITE_LOGIN_DELAY_MIN="100ms"
//	SITE_LOGIN_DELAY_MAX="500ms"
//	SITE_LOGIN_LIMIT_ENABLED="true"
//	SITE_REDIS_URL="redis://localhost:6379/0"  # shared login limiter
//
//	SITE_ALLOWED_ORIGINS="https://etm-murmansk.ru,http://localhost"
//
//	SITE_UPLOAD_BACKEND="filesystem"   # filesystem, s3
//	SITE_UPLOAD_DIR="./uploads"
//	SITE_UPLOAD_URL_PREFIX="uploads/"
//	SITE_UPLOAD_MAX_BYTES="5242880"
//
//	SITE_LOG_LEVEL="info"
//	SITE_LOG_FORMAT="json"             # json, text
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	db, err := storage.Open(ctx, cfg.Database)
//
// The returned *Config is treated as immutable and passed to every component
// that needs it.
package config
