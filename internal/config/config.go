// Package config loads the service configuration from the environment.
// Every setting has a default, so an unconfigured process listens on :8000
// and writes submissions.json in its working directory.
package config

import (
	"os"
	"time"
)

// Defaults.
const (
	DefaultAddr                = ":8000"
	DefaultStaticDir           = "."
	DefaultStorePath           = "submissions.json"
	DefaultServiceName         = "Car Showroom Enquiry Server"
	DefaultConfirmationMessage = "Thank you for your interest! We will contact you shortly."
	DefaultMaxBodyBytes        = 1 << 20
	DefaultRateLimit           = 60
)

// Branding is what differs between otherwise identical deployments.
type Branding struct {
	ServiceName         string
	ConfirmationMessage string
	Banner              string // printed at startup; empty uses the default box
}

// Webhook configures the submission webhook. Empty URL disables it.
type Webhook struct {
	URL        string
	Secret     string
	RetryCount int
}

// Backup configures periodic snapshots of the store to object storage.
type Backup struct {
	Enabled       bool
	Interval      time.Duration
	RetentionDays int
	Compression   bool
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Prefix        string
}

type Config struct {
	Addr      string
	StaticDir string

	StoreDriver string
	StorePath   string
	DatabaseURL string

	IDScheme       string
	ReservedFields string
	MaxBodyBytes   int64
	RateLimit      int // submit requests per IP per minute; 0 disables

	Env       string
	LogFormat string
	LogLevel  string
	Version   string

	Branding Branding
	Webhook  Webhook
	Backup   Backup
}

// Load reads and validates the configuration from the process environment.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}
	v := NewValidator()

	cfg := &Config{
		Addr:           env("LEAD_ADDR", DefaultAddr),
		StaticDir:      env("LEAD_STATIC_DIR", DefaultStaticDir),
		StoreDriver:    env("LEAD_STORE_DRIVER", "file"),
		StorePath:      env("LEAD_STORE_PATH", DefaultStorePath),
		DatabaseURL:    getenv("DATABASE_URL"),
		IDScheme:       env("LEAD_ID_SCHEME", "uuid"),
		ReservedFields: env("LEAD_RESERVED_FIELDS", "overwrite"),
		MaxBodyBytes:   int64(v.Int("LEAD_MAX_BODY_BYTES", getenv("LEAD_MAX_BODY_BYTES"), DefaultMaxBodyBytes, 1)),
		RateLimit:      v.Int("LEAD_RATE_LIMIT", getenv("LEAD_RATE_LIMIT"), DefaultRateLimit, 0),
		Env:            env("LEAD_ENV", "development"),
		LogFormat:      env("LEAD_LOG_FORMAT", "text"),
		LogLevel:       env("LEAD_LOG_LEVEL", "info"),
		Version:        env("LEAD_VERSION", "dev"),
		Branding: Branding{
			ServiceName:         env("LEAD_SERVICE_NAME", DefaultServiceName),
			ConfirmationMessage: env("LEAD_CONFIRMATION_MESSAGE", DefaultConfirmationMessage),
			Banner:              getenv("LEAD_BANNER"),
		},
		Webhook: Webhook{
			URL:        getenv("LEAD_WEBHOOK_URL"),
			Secret:     getenv("LEAD_WEBHOOK_SECRET"),
			RetryCount: v.Int("LEAD_WEBHOOK_RETRIES", getenv("LEAD_WEBHOOK_RETRIES"), 3, 0),
		},
		Backup: Backup{
			Enabled:       v.Bool("LEAD_BACKUP_ENABLED", getenv("LEAD_BACKUP_ENABLED"), false),
			Interval:      v.Duration("LEAD_BACKUP_INTERVAL", getenv("LEAD_BACKUP_INTERVAL"), 24*time.Hour),
			RetentionDays: v.Int("LEAD_BACKUP_RETENTION_DAYS", getenv("LEAD_BACKUP_RETENTION_DAYS"), 7, 1),
			Compression:   v.Bool("LEAD_BACKUP_COMPRESSION", getenv("LEAD_BACKUP_COMPRESSION"), true),
			Endpoint:      getenv("LEAD_S3_ENDPOINT"),
			AccessKey:     getenv("LEAD_S3_ACCESS_KEY"),
			SecretKey:     getenv("LEAD_S3_SECRET_KEY"),
			Bucket:        getenv("LEAD_BUCKET"),
			Prefix:        env("LEAD_BACKUP_PREFIX", "backups"),
		},
	}

	// production always logs JSON
	if cfg.Env == "production" {
		cfg.LogFormat = "json"
	}

	v.ValidateAddr("LEAD_ADDR", cfg.Addr)
	v.ValidateEnum("LEAD_STORE_DRIVER", cfg.StoreDriver, []string{"file", "postgres"})
	v.ValidateEnum("LEAD_ID_SCHEME", cfg.IDScheme, []string{"uuid", "nanoid", "timestamp"})
	v.ValidateEnum("LEAD_RESERVED_FIELDS", cfg.ReservedFields, []string{"overwrite", "reject"})
	v.ValidateEnum("LEAD_ENV", cfg.Env, []string{"development", "staging", "production"})
	v.ValidateEnum("LEAD_LOG_FORMAT", cfg.LogFormat, []string{"text", "json"})
	v.ValidateEnum("LEAD_LOG_LEVEL", cfg.LogLevel, []string{"debug", "info", "warn", "error"})
	v.ValidateURL("LEAD_WEBHOOK_URL", cfg.Webhook.URL)

	if cfg.StoreDriver == "postgres" {
		v.ValidateRequired("DATABASE_URL", cfg.DatabaseURL)
	}
	if cfg.Backup.Enabled {
		v.ValidateRequired("LEAD_S3_ENDPOINT", cfg.Backup.Endpoint)
		v.ValidateRequired("LEAD_S3_ACCESS_KEY", cfg.Backup.AccessKey)
		v.ValidateRequired("LEAD_S3_SECRET_KEY", cfg.Backup.SecretKey)
		v.ValidateRequired("LEAD_BUCKET", cfg.Backup.Bucket)
	}

	if err := v.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}
