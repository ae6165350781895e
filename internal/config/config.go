package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Database types
const (
	PostgresDBType = "postgres"
	SqliteDBType   = "sqlite"
)

// Log types and levels
const (
	LogTypeConsole = "console"
	LogTypeFile    = "file"

	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type Config struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	Database DatabaseSettings
	Logger   LoggerSettings
	Auth     AuthSettings
	Stripe   StripeSettings
	LLM      LLMSettings
	Storage  StorageSettings
	Seed     SeedSettings
	Metrics  MetricsSettings
}

type DatabaseSettings struct {
	Type string `env:"DB_TYPE" envDefault:"postgres" validate:"oneof=postgres sqlite"`
	DSN  string `env:"DATABASE_URL" envDefault:"host=localhost user=postgres password=password dbname=hirepath port=5432 sslmode=disable"`
}

type LoggerSettings struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Type       string `env:"LOG_TYPE" envDefault:"console" validate:"oneof=console file"`
	Format     string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
	FilePath   string `env:"LOG_FILE_PATH"`
	MaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"10"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAge     int    `env:"LOG_MAX_AGE" envDefault:"28"`
}

type AuthSettings struct {
	JWTSecret string        `env:"JWT_SECRET" validate:"omitempty,min=16"`
	TokenTTL  time.Duration `env:"JWT_TTL" envDefault:"24h"`
}

type StripeSettings struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	SuccessURL    string `env:"STRIPE_SUCCESS_URL" envDefault:"http://localhost:3000/billing/success"`
	CancelURL     string `env:"STRIPE_CANCEL_URL" envDefault:"http://localhost:3000/pricing"`
}

type LLMSettings struct {
	APIKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
}

type StorageSettings struct {
	Bucket    string `env:"S3_BUCKET"`
	Region    string `env:"S3_REGION" envDefault:"auto"`
	Endpoint  string `env:"S3_ENDPOINT"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
}

type SeedSettings struct {
	AdminEmail    string `env:"SEED_ADMIN_EMAIL" envDefault:"admin@hirepath.local"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
	FixturePath   string `env:"SEED_FIXTURE"`
}

type MetricsSettings struct {
	// PushgatewayURL receives metrics from one-shot commands such as stripe-sync.
	PushgatewayURL string `env:"PUSHGATEWAY_URL" validate:"omitempty,url"`
}

// StripeEnabled reports whether billing endpoints and the product sync can run.
func (c *Config) StripeEnabled() bool { return c.Stripe.SecretKey != "" }

// LLMEnabled reports whether AI features can run.
func (c *Config) LLMEnabled() bool { return c.LLM.APIKey != "" }

// StorageEnabled reports whether CV documents can be stored.
func (c *Config) StorageEnabled() bool { return c.Storage.Bucket != "" }

// Load reads .env (if any) and the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
		slog.Info("No .env file found, using environment variables")
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags plus rules that span several fields.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Logger.Type == LogTypeFile {
		if c.Logger.FilePath == "" {
			return errors.New("LOG_FILE_PATH is required for file logging")
		}
		if c.Logger.MaxSize < 1 || c.Logger.MaxSize > 100 {
			return errors.New("LOG_MAX_SIZE must be between 1 and 100 MB")
		}
	}
	if c.Stripe.SecretKey != "" && c.Stripe.WebhookSecret == "" {
		return errors.New("STRIPE_WEBHOOK_SECRET is required when STRIPE_SECRET_KEY is set")
	}
	if c.Storage.Bucket != "" && (c.Storage.AccessKey == "" || c.Storage.SecretKey == "") {
		return errors.New("S3_ACCESS_KEY and S3_SECRET_KEY are required when S3_BUCKET is set")
	}
	return nil
}
