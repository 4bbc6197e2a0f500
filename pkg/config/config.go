package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	CORS     CORSConfig     `yaml:"cors"`
	Upload   UploadConfig   `yaml:"upload"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" env:"SITE_HOST"`
	Port            string        `yaml:"port" env:"SITE_PORT"`
	HealthPort      string        `yaml:"health_port" env:"SITE_HEALTH_PORT"`
	APIPrefix       string        `yaml:"api_prefix" env:"SITE_API_PREFIX"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SITE_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SITE_WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SITE_IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SITE_SHUTDOWN_TIMEOUT"`
}

// Addr returns the API listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// HealthAddr returns the health/metrics listen address.
func (s ServerConfig) HealthAddr() string {
	return s.Host + ":" + s.HealthPort
}

// DatabaseConfig holds the relational store settings
type DatabaseConfig struct {
	Driver          string        `yaml:"driver" env:"SITE_DB_DRIVER"`
	DSN             string        `yaml:"dsn" env:"SITE_DB_DSN"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"SITE_DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"SITE_DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"SITE_DB_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"SITE_DB_CONN_MAX_IDLE_TIME"`
	PingTimeout     time.Duration `yaml:"ping_timeout" env:"SITE_DB_PING_TIMEOUT"`
	AutoMigrate     bool          `yaml:"auto_migrate" env:"SITE_DB_AUTO_MIGRATE"`
}

// AuthConfig holds token and login settings
type AuthConfig struct {
	TokenLifetime time.Duration `yaml:"token_lifetime" env:"SITE_TOKEN_LIFETIME"`
	// LoginDelayMin and LoginDelayMax bound the random pause after a failed login.
	LoginDelayMin time.Duration `yaml:"login_delay_min" env:"SITE_LOGIN_DELAY_MIN"`
	LoginDelayMax time.Duration `yaml:"login_delay_max" env:"SITE_LOGIN_DELAY_MAX"`

	LoginLimitEnabled bool          `yaml:"login_limit_enabled" env:"SITE_LOGIN_LIMIT_ENABLED"`
	LoginLimitBurst   int           `yaml:"login_limit_burst" env:"SITE_LOGIN_LIMIT_BURST"`
	LoginLimitWindow  time.Duration `yaml:"login_limit_window" env:"SITE_LOGIN_LIMIT_WINDOW"`
}

// CORSConfig holds the origin allow-list
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"SITE_ALLOWED_ORIGINS" envSeparator:","`
}

// UploadConfig holds image upload settings
type UploadConfig struct {
	Backend     string   `yaml:"backend" env:"SITE_UPLOAD_BACKEND"`
	Dir         string   `yaml:"dir" env:"SITE_UPLOAD_DIR"`
	URLPrefix   string   `yaml:"url_prefix" env:"SITE_UPLOAD_URL_PREFIX"`
	MaxBytes    int64    `yaml:"max_bytes" env:"SITE_UPLOAD_MAX_BYTES"`
	Extensions  []string `yaml:"extensions" env:"SITE_UPLOAD_EXTENSIONS" envSeparator:","`
	MIMETypes   []string `yaml:"mime_types" env:"SITE_UPLOAD_MIME_TYPES" envSeparator:","`
	S3Endpoint  string   `yaml:"s3_endpoint" env:"SITE_S3_ENDPOINT"`
	S3Region    string   `yaml:"s3_region" env:"SITE_S3_REGION"`
	S3Bucket    string   `yaml:"s3_bucket" env:"SITE_S3_BUCKET"`
	S3AccessKey string   `yaml:"s3_access_key" env:"SITE_S3_ACCESS_KEY"`
	S3SecretKey string   `yaml:"s3_secret_key" env:"SITE_S3_SECRET_KEY"`
	S3PathStyle bool     `yaml:"s3_path_style" env:"SITE_S3_PATH_STYLE"`
	S3KeyPrefix string   `yaml:"s3_key_prefix" env:"SITE_S3_KEY_PREFIX"`
}

// RedisConfig is used by the shared login limiter. An empty URL disables it.
type RedisConfig struct {
	URL      string `yaml:"url" env:"SITE_REDIS_URL"`
	Password string `yaml:"password" env:"SITE_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"SITE_REDIS_DB"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level" env:"SITE_LOG_LEVEL"`
	Format string `yaml:"format" env:"SITE_LOG_FORMAT"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			HealthPort:      "9090",
			APIPrefix:       "/api",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			DSN:             "postgres://localhost/etmsite?sslmode=disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			PingTimeout:     5 * time.Second,
		},
		Auth: AuthConfig{
			TokenLifetime:     24 * time.Hour,
			LoginDelayMin:     100 * time.Millisecond,
			LoginDelayMax:     500 * time.Millisecond,
			LoginLimitEnabled: true,
			LoginLimitBurst:   10,
			LoginLimitWindow:  15 * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"https://etm-murmansk.ru", "http://localhost"},
		},
		Upload: UploadConfig{
			Backend:    "filesystem",
			Dir:        "./uploads",
			URLPrefix:  "uploads/",
			MaxBytes:   5 * 1024 * 1024,
			Extensions: []string{"jpg", "jpeg", "png", "gif", "webp", "svg"},
			MIMETypes: []string{
				"image/jpeg",
				"image/png",
				"image/gif",
				"image/webp",
				"image/svg+xml",
			},
			S3Region: "us-east-1",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// SITE_CONFIG_FILE, and environment variables, in that order.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("SITE_CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if !strings.HasPrefix(c.Server.APIPrefix, "/") {
		return fmt.Errorf("api prefix must start with /: %q", c.Server.APIPrefix)
	}

	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("invalid database driver: %s (must be postgres or sqlite3)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	if c.Auth.TokenLifetime <= 0 {
		return fmt.Errorf("token lifetime must be positive")
	}
	if c.Auth.LoginDelayMin < 0 || c.Auth.LoginDelayMax < c.Auth.LoginDelayMin {
		return fmt.Errorf("invalid login delay range: %s..%s", c.Auth.LoginDelayMin, c.Auth.LoginDelayMax)
	}
	if c.Auth.LoginLimitEnabled && (c.Auth.LoginLimitBurst <= 0 || c.Auth.LoginLimitWindow <= 0) {
		return fmt.Errorf("login limit burst and window must be positive when the limiter is enabled")
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max bytes must be positive")
	}
	if len(c.Upload.Extensions) == 0 || len(c.Upload.MIMETypes) == 0 {
		return fmt.Errorf("upload extension and MIME allow-lists must not be empty")
	}
	switch c.Upload.Backend {
	case "filesystem":
		if c.Upload.Dir == "" {
			return fmt.Errorf("upload dir is required for filesystem uploads")
		}
	case "s3":
		if c.Upload.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 uploads")
		}
	default:
		return fmt.Errorf("invalid upload backend: %s (must be filesystem or s3)", c.Upload.Backend)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Log.Format)
	}

	return nil
}
