package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Source kinds for the ticket/user backend.
const (
	SourceRemote   = "remote"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Source       SourceConfig
	View         ViewConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables the
// snapshot cache.
type RedisConfig struct {
	Addr                   string
	Password               string
	DB                     int
	SnapshotTTLSeconds     int
	SnapshotRefreshSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
	// Output is a zap sink such as stdout, stderr or a file path.
	Output string
}

// SourceConfig selects where tickets and users are fetched from.
type SourceConfig struct {
	Kind                  string
	BackendURL            string
	BackendTimeoutSeconds int
	SQLitePath            string
}

// ViewConfig controls how tickets are rendered.
type ViewConfig struct {
	Timezone        string
	DateLayout      string
	DefaultPageSize int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "vex-ticket-view"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:                   os.Getenv("REDIS_ADDR"),
			Password:               os.Getenv("REDIS_PASSWORD"),
			DB:                     redisDB,
			SnapshotTTLSeconds:     getEnvAsInt("SNAPSHOT_TTL_SECONDS", 15),
			SnapshotRefreshSeconds: getEnvAsInt("SNAPSHOT_REFRESH_SECONDS", 0),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Source: SourceConfig{
			Kind:                  strings.ToLower(getEnv("SOURCE_KIND", SourceRemote)),
			BackendURL:            strings.TrimRight(getEnv("BACKEND_URL", "http://127.0.0.1:4943"), "/"),
			BackendTimeoutSeconds: getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 10),
			SQLitePath:            getEnv("SQLITE_PATH", "vex.db"),
		},
		View: ViewConfig{
			Timezone:        getEnv("VIEW_TIMEZONE", "UTC"),
			DateLayout:      os.Getenv("VIEW_DATE_LAYOUT"),
			DefaultPageSize: getEnvAsInt("VIEW_DEFAULT_PAGE_SIZE", 10),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceRemote:
		if c.Source.BackendURL == "" {
			return fmt.Errorf("BACKEND_URL is required for source %q", c.Source.Kind)
		}
	case SourcePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for source %q", c.Source.Kind)
		}
	case SourceSQLite:
		if c.Source.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for source %q", c.Source.Kind)
		}
	default:
		return fmt.Errorf("invalid SOURCE_KIND %q", c.Source.Kind)
	}
	if _, err := c.View.Location(); err != nil {
		return err
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// BackendTimeout returns the per request timeout for the remote backend.
func (s SourceConfig) BackendTimeout() time.Duration {
	if s.BackendTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.BackendTimeoutSeconds) * time.Second
}

// SnapshotTTL returns how long fetched snapshots stay cached.
func (r RedisConfig) SnapshotTTL() time.Duration {
	if r.SnapshotTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(r.SnapshotTTLSeconds) * time.Second
}

// SnapshotRefresh returns the background refresh interval, or zero when
// disabled.
func (r RedisConfig) SnapshotRefresh() time.Duration {
	if r.SnapshotRefreshSeconds <= 0 {
		return 0
	}
	return time.Duration(r.SnapshotRefreshSeconds) * time.Second
}

// Location resolves the display timezone.
func (v ViewConfig) Location() (*time.Location, error) {
	if v.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(v.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid VIEW_TIMEZONE %q: %w", v.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
