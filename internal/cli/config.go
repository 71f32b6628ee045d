package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vex-labs/ticket-view/internal/config"
)

// Settings is the vexctl configuration file.
type Settings struct {
	Source                string `yaml:"source"                  mapstructure:"source"`
	BackendURL            string `yaml:"backend_url"             mapstructure:"backend_url"`
	BackendTimeoutSeconds int    `yaml:"backend_timeout_seconds" mapstructure:"backend_timeout_seconds"`
	SQLitePath            string `yaml:"sqlite_path"             mapstructure:"sqlite_path"`
	PostgresDSN           string `yaml:"postgres_dsn,omitempty"  mapstructure:"postgres_dsn"`
	RedisAddr             string `yaml:"redis_addr,omitempty"    mapstructure:"redis_addr"`
	RedisPassword         string `yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB               int    `yaml:"redis_db,omitempty"      mapstructure:"redis_db"`
	Timezone              string `yaml:"timezone"                mapstructure:"timezone"`
	DateLayout            string `yaml:"date_layout,omitempty"   mapstructure:"date_layout"`
	PageSize              int    `yaml:"page_size"               mapstructure:"page_size"`
}

var settingsDefaults = map[string]any{
	"source":                  config.SourceRemote,
	"backend_url":             "http://127.0.0.1:4943",
	"backend_timeout_seconds": 10,
	"sqlite_path":             "vex.db",
	"timezone":                "UTC",
	"page_size":               20,
}

// DefaultPath returns the default config file path (~/.vexctl.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vexctl.yaml"
	}
	return filepath.Join(home, ".vexctl.yaml")
}

// LoadSettings reads the YAML file at path and applies VEX_* environment
// overrides. A missing file is not an error. path may be empty to use the
// default path.
func LoadSettings(path string) (Settings, error) {
	v := viper.New()
	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	for key, value := range settingsDefaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("VEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range settingKeys() {
		if err := v.BindEnv(key); err != nil {
			return Settings{}, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Settings{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	s.Source = strings.ToLower(strings.TrimSpace(s.Source))
	s.BackendURL = strings.TrimRight(s.BackendURL, "/")
	return s, nil
}

// SaveSettings writes s as YAML to path, or to the default path when empty.
func SaveSettings(s Settings, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Config converts the settings into the service configuration used to open
// a source. Logs go to stderr so they never mix with command output.
func (s Settings) Config(logLevel string) (*config.Config, error) {
	cfg := &config.Config{
		App: config.AppConfig{Name: "vexctl"},
		Postgres: config.PostgresConfig{
			DSN:           s.PostgresDSN,
			MaxConns:      2,
			MinConns:      1,
			RunMigrations: true,
		},
		Redis: config.RedisConfig{
			Addr:               s.RedisAddr,
			Password:           s.RedisPassword,
			DB:                 s.RedisDB,
			SnapshotTTLSeconds: 15,
		},
		Logger: config.LoggerConfig{Level: logLevel, Output: "stderr"},
		Source: config.SourceConfig{
			Kind:                  s.Source,
			BackendURL:            s.BackendURL,
			BackendTimeoutSeconds: s.BackendTimeoutSeconds,
			SQLitePath:            s.SQLitePath,
		},
		View: config.ViewConfig{
			Timezone:        s.Timezone,
			DateLayout:      s.DateLayout,
			DefaultPageSize: s.PageSize,
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func settingKeys() []string {
	return []string{
		"source", "backend_url", "backend_timeout_seconds", "sqlite_path",
		"postgres_dsn", "redis_addr", "redis_password", "redis_db",
		"timezone", "date_layout", "page_size",
	}
}
