package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
	"github.com/joho/godotenv"
)

// Config holds process configuration read from the environment.
type Config struct {
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Database. An empty DatabaseURL selects SQLite at SQLitePath.
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string

	// Empty RedisURL keeps drafts in memory.
	RedisURL string
	// Empty RabbitMQURL dispatches events in process.
	RabbitMQURL string

	HTTPAddr         string
	MCPAddr          string
	MCPAuthToken     string
	WorkerHealthAddr string

	CatalogPath       string
	DraftTTL          time.Duration
	DraftHistoryLimit int

	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxStatsInterval    time.Duration
	OutboxProcessorEnabled bool

	PublishBreakerFailures int
	PublishBreakerTimeout  time.Duration
}

// Load reads a .env file when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		HTTPAddr:         getEnv("HTTP_ADDR", "0.0.0.0:8080"),
		MCPAddr:          getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken:     getEnv("MCP_AUTH_TOKEN", ""),
		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		CatalogPath:       getEnv("CATALOG_PATH", ""),
		DraftTTL:          getDurationEnv("DRAFT_TTL", 24*time.Hour),
		DraftHistoryLimit: getIntEnv("DRAFT_HISTORY_LIMIT", 50),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 100*time.Millisecond),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxStatsInterval:    getDurationEnv("OUTBOX_STATS_INTERVAL", time.Minute),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		PublishBreakerFailures: getIntEnv("PUBLISH_BREAKER_FAILURES", 5),
		PublishBreakerTimeout:  getDurationEnv("PUBLISH_BREAKER_TIMEOUT", 30*time.Second),
	}

	cfg.DatabaseDriver = getEnv("DATABASE_DRIVER", database.DetectDriver(cfg.DatabaseURL).String())
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
		if cfg.IsProduction() {
			cfg.LogFormat = "json"
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unsupported LOG_FORMAT %q", c.LogFormat)
	}
	if c.DraftHistoryLimit < 0 {
		return fmt.Errorf("config: DRAFT_HISTORY_LIMIT must not be negative")
	}
	if c.OutboxCleanupInterval <= 0 || c.OutboxStatsInterval <= 0 {
		return fmt.Errorf("config: outbox cleanup and stats intervals must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }
func (c *Config) IsProduction() bool  { return c.AppEnv == "production" }
func (c *Config) IsSQLite() bool      { return c.DatabaseDriver == "sqlite" }

// LogConfig converts the logging settings for observability.NewLogger.
func (c *Config) LogConfig(version string) observability.LogConfig {
	lc := observability.DefaultLogConfig()
	lc.Level = c.LogLevel
	lc.Format = observability.LogFormat(c.LogFormat)
	lc.AddSource = c.IsProduction()
	if version != "" {
		lc.ServiceVersion = version
	}
	return lc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
