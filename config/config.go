package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverBolt     = "bolt"
)

// Config is the process configuration, read once at startup. RSVP settings
// that may change at runtime live in EnvRSVPSettings instead.
type Config struct {
	Port     string `env:"PORT"      envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	BoltPath    string `env:"BOLT_PATH"    envDefault:"wedding.db"`

	JWTSecret    string        `env:"JWT_SECRET"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN" envDefault:"8h"`

	FrontendURL    string   `env:"FRONTEND_URL"    envDefault:"http://localhost:3000"`
	AdminURL       string   `env:"ADMIN_URL"       envDefault:"http://localhost:3001"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	ResendAPIKey       string   `env:"RESEND_API_KEY"`
	EmailFrom          string   `env:"EMAIL_FROM"           envDefault:"noreply@example.com"`
	CoupleNotifyEmails []string `env:"COUPLE_NOTIFY_EMAILS" envSeparator:","`

	DataEncryptionKey string `env:"DATA_ENCRYPTION_KEY"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminName     string `env:"ADMIN_NAME" envDefault:"Admin"`
}

// Load reads .env when present, then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL environment variable is required")
		}
	case StoreDriverBolt:
		if c.BoltPath == "" {
			return errors.New("BOLT_PATH environment variable is required")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.DataEncryptionKey != "" && len(c.DataEncryptionKey) != 32 {
		return errors.New("DATA_ENCRYPTION_KEY must be exactly 32 characters")
	}
	return nil
}

// Origins lists the CORS origins: both frontends plus ALLOWED_ORIGINS
func (c *Config) Origins() []string {
	origins := []string{c.FrontendURL, c.AdminURL}
	for _, o := range c.AllowedOrigins {
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
