package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Schedule  ScheduleConfig
	Ingestion IngestionConfig
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// DatabaseConfig holds Postgres connection parameters.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL,required"`
	MaxConnections  int           `env:"DB_MAX_CONNECTIONS" envDefault:"25"`
	MaxIdle         int           `env:"DB_MAX_IDLE_CONNECTIONS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	MigrationsDir   string        `env:"DB_MIGRATIONS_DIR" envDefault:"./migrations"`
}

// CacheConfig holds the optional Redis cache settings for event listings.
type CacheConfig struct {
	RedisAddr string        `env:"REDIS_ADDR"` // empty disables the cache
	TTL       time.Duration `env:"CACHE_TTL" envDefault:"10m"`
}

// ScheduleConfig controls the daily scraping trigger.
type ScheduleConfig struct {
	Hour     int    `env:"SCRAPE_HOUR" envDefault:"6"`
	Minute   int    `env:"SCRAPE_MINUTE" envDefault:"0"`
	Timezone string `env:"SCRAPE_TIMEZONE" envDefault:"America/Denver"`
}

// IngestionConfig controls the pipeline behavior shared by all adapters.
// FETCH_TIMEOUT and FETCH_MAX_RETRIES are the defaults; individual sources
// can deviate via the SOURCE_* maps, keyed by adapter name, e.g.
// SOURCE_FETCH_TIMEOUTS="denver_zoo:45s,denver_library:10s".
type IngestionConfig struct {
	FetchTimeout        time.Duration            `env:"FETCH_TIMEOUT" envDefault:"30s"`
	MaxRetries          int                      `env:"FETCH_MAX_RETRIES" envDefault:"3"`
	SourceFetchTimeouts map[string]time.Duration `env:"SOURCE_FETCH_TIMEOUTS"`
	SourceMaxRetries    map[string]int           `env:"SOURCE_MAX_RETRIES"`
	ConcurrentSources   int                      `env:"CONCURRENT_SOURCES" envDefault:"4"`
	EnrichDuplicates    bool                     `env:"ENRICH_DUPLICATES" envDefault:"true"`
	DisabledSources     []string                 `env:"DISABLED_SOURCES" envSeparator:","`
	LexiconPath         string                   `env:"LEXICON_PATH"` // optional YAML lexicon override
}

// Load reads configuration from environment variables, applying defaults when
// values are not provided. A .env file is honored for local development.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Schedule.Hour < 0 || c.Schedule.Hour > 23 {
		return fmt.Errorf("invalid SCRAPE_HOUR: must be 0-23, got %d", c.Schedule.Hour)
	}
	if c.Schedule.Minute < 0 || c.Schedule.Minute > 59 {
		return fmt.Errorf("invalid SCRAPE_MINUTE: must be 0-59, got %d", c.Schedule.Minute)
	}
	if c.Ingestion.MaxRetries < 0 {
		return fmt.Errorf("invalid FETCH_MAX_RETRIES: must be non-negative")
	}
	if c.Ingestion.ConcurrentSources < 1 {
		return fmt.Errorf("invalid CONCURRENT_SOURCES: must be at least 1")
	}
	for name, timeout := range c.Ingestion.SourceFetchTimeouts {
		if timeout <= 0 {
			return fmt.Errorf("invalid SOURCE_FETCH_TIMEOUTS: %s must be positive", name)
		}
	}
	for name, retries := range c.Ingestion.SourceMaxRetries {
		if retries < 0 {
			return fmt.Errorf("invalid SOURCE_MAX_RETRIES: %s must be non-negative", name)
		}
	}
	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
	}
	return nil
}

// FetchTimeoutFor returns the fetch timeout for the named source, falling
// back to the global FETCH_TIMEOUT when no override is set.
func (c IngestionConfig) FetchTimeoutFor(name string) time.Duration {
	if timeout, ok := c.SourceFetchTimeouts[name]; ok {
		return timeout
	}
	return c.FetchTimeout
}

// MaxRetriesFor returns the retry budget for the named source, falling back
// to the global FETCH_MAX_RETRIES when no override is set.
func (c IngestionConfig) MaxRetriesFor(name string) int {
	if retries, ok := c.SourceMaxRetries[name]; ok {
		return retries
	}
	return c.MaxRetries
}

// SourceEnabled reports whether the named source should run, honoring the
// DISABLED_SOURCES list.
func (c IngestionConfig) SourceEnabled(name string) bool {
	for _, disabled := range c.DisabledSources {
		if strings.EqualFold(strings.TrimSpace(disabled), name) {
			return false
		}
	}
	return true
}

// ParseLogLevel converts a textual level into a slog.Level.
func ParseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
