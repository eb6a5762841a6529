package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr   string `env:"HTTP_ADDR" envDefault:":8080"`
	AdminAddr  string `env:"ADMIN_ADDR" envDefault:":9091"`
	APIBaseURL string `env:"WINLOSS_API_URL" envDefault:"http://localhost:8080"` // used by winlossctl

	StoreDriver    string `env:"STORE_DRIVER" envDefault:"memory"`
	RedisURL       string `env:"REDIS_URL"`
	RedisNamespace string `env:"REDIS_NAMESPACE" envDefault:"winloss"`
	PostgresURL    string `env:"POSTGRES_URL"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"winloss.db"`

	// ChangeFeed enables buffering change events to the Redis stream.
	ChangeFeed      bool   `env:"CHANGE_FEED" envDefault:"false"`
	ChangeStream    string `env:"CHANGE_STREAM" envDefault:"winloss:changes"`
	ChangeDLQStream string `env:"CHANGE_DLQ_STREAM" envDefault:"winloss:changes:dlq"`
	WALPath         string `env:"WAL_PATH" envDefault:"./wal"`
	WALSegmentSize  int64  `env:"WAL_SEGMENT_SIZE_BYTES" envDefault:"104857600"`   // 100MB
	WALMaxDiskSize  int64  `env:"WAL_MAX_DISK_SIZE_BYTES" envDefault:"1073741824"` // 1GB

	PIIRedactionFields string  `env:"PII_REDACTION_FIELDS" envDefault:"email,participantName"`
	MaxImportSize      int64   `env:"MAX_IMPORT_SIZE_BYTES" envDefault:"10485760"` // 10MB
	RateLimitRPS       float64 `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" envDefault:"100"`

	ChatDelay            time.Duration `env:"CHAT_DELAY" envDefault:"1s"`
	SeedRandomInterviews int           `env:"SEED_RANDOM_INTERVIEWS" envDefault:"50"`
	SeedRandomSeed       uint64        `env:"SEED_RANDOM_SEED" envDefault:"42"`

	ConsumerGroup        string        `env:"CONSUMER_GROUP" envDefault:"change-auditors"`
	ConsumerBatchSize    int           `env:"CONSUMER_BATCH_SIZE" envDefault:"100"`
	ConsumerMaxRetries   int           `env:"CONSUMER_MAX_RETRIES" envDefault:"3"`
	ConsumerRetryBackoff time.Duration `env:"CONSUMER_RETRY_BACKOFF" envDefault:"2s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects unknown drivers and missing connection settings.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for store driver %q", c.StoreDriver)
		}
	case DriverPostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required for store driver %q", c.StoreDriver)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for store driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.ChangeFeed && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when CHANGE_FEED is enabled")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	return nil
}

// RedactionFields splits PII_REDACTION_FIELDS into field names.
func (c *Config) RedactionFields() []string {
	var fields []string
	for _, f := range strings.Split(c.PIIRedactionFields, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
