package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/zllovesuki/unaique/webhook"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Environment is the type for defining the running environment
type Environment string

// define constants
const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Backend selects the record store implementation
type Backend string

// define constants
const (
	BackendAirtable Backend = "airtable"
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
)

// Config holds every setting read from the environment
type Config struct {
	Environment Environment `envconfig:"API_ENV" default:"development"`
	Addr        string      `envconfig:"ADDR" default:":42069"`

	ClerkWebhookSecret string `envconfig:"CLERK_WEBHOOK_SECRET"`
	ClerkJWTKey        string `envconfig:"CLERK_JWT_KEY"`

	StoreBackend    Backend `envconfig:"STORE_BACKEND" default:"airtable"`
	AirtableAPIKey  string  `envconfig:"AIRTABLE_API_KEY"`
	AirtableBaseID  string  `envconfig:"AIRTABLE_BASE_ID"`
	AirtableBaseURL string  `envconfig:"AIRTABLE_BASE_URL"`
	PostgresURI     string  `envconfig:"POSTGRES_URI"`

	RedisURI      string `envconfig:"REDIS_URI"`
	RedisPassword string `envconfig:"REDIS_PW"`

	AMQPURI      string `envconfig:"AMQP_URI"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"unaique.customers"`

	N8NWebhookURL string `envconfig:"N8N_WEBHOOK_URL"`
	N8NAPIKey     string `envconfig:"N8N_API_KEY"`

	SentryDSN   string   `envconfig:"SENTRY_DSN"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	EnforcePhoneOnUpdate bool `envconfig:"ENFORCE_PHONE_ON_UPDATE" default:"false"`
}

// DotFile returns the .env file matching the API_ENV variable
func DotFile() string {
	if Environment(os.Getenv("API_ENV")) == EnvProduction {
		return ".env.production"
	}
	return ".env.development"
}

// Load reads dotFile (if it exists) into the process environment, then parses
// the environment into a Config
func Load(dotFile string) (*Config, error) {
	if dotFile != "" {
		if err := godotenv.Load(dotFile); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return nil, errors.Wrap(err, "Cannot load configurations from "+dotFile)
		}
	}
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, errors.Wrap(err, "Cannot parse configurations from environment")
	}
	return &c, nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// WebhookSecretConfigured reports whether a real webhook secret is set
func (c *Config) WebhookSecretConfigured() bool {
	s := strings.TrimSpace(c.ClerkWebhookSecret)
	return s != "" && s != webhook.PlaceholderSecret
}

// Validate checks the settings required to serve requests. A missing webhook secret
// or n8n URL is not fatal: the affected endpoints answer 500 per request instead.
func (c *Config) Validate() error {
	if err := c.ValidateStore(); err != nil {
		return err
	}
	if c.ClerkJWTKey == "" {
		return fmt.Errorf("CLERK_JWT_KEY is not set")
	}
	return nil
}

// ValidateStore checks the settings of the selected record store only
func (c *Config) ValidateStore() error {
	switch c.StoreBackend {
	case BackendAirtable:
		if c.AirtableAPIKey == "" {
			return fmt.Errorf("AIRTABLE_API_KEY is not set")
		}
		if c.AirtableBaseID == "" {
			return fmt.Errorf("AIRTABLE_BASE_ID is not set")
		}
	case BackendPostgres:
		if c.PostgresURI == "" {
			return fmt.Errorf("POSTGRES_URI is not set")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}
