package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SOURCE_KIND", "BACKEND_URL", "REDIS_ADDR", "VIEW_TIMEZONE", "VIEW_DEFAULT_PAGE_SIZE", "SNAPSHOT_TTL_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Source.Kind != SourceRemote || cfg.Source.BackendURL != "http://127.0.0.1:4943" {
		t.Fatalf("unexpected source %+v", cfg.Source)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("expected cache disabled by default, got %q", cfg.Redis.Addr)
	}
	if cfg.View.DefaultPageSize != 10 {
		t.Fatalf("unexpected page size %d", cfg.View.DefaultPageSize)
	}
	loc, err := cfg.View.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("expected UTC, got %v %v", loc, err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SOURCE_KIND", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/fixtures.db")
	t.Setenv("BACKEND_URL", "http://gateway:8000/")
	t.Setenv("BACKEND_TIMEOUT_SECONDS", "3")
	t.Setenv("SNAPSHOT_TTL_SECONDS", "45")
	t.Setenv("VIEW_TIMEZONE", "Europe/Berlin")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Source.Kind != SourceSQLite || cfg.Source.SQLitePath != "/tmp/fixtures.db" {
		t.Fatalf("unexpected source %+v", cfg.Source)
	}
	if cfg.Source.BackendURL != "http://gateway:8000" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.Source.BackendURL)
	}
	if cfg.Source.BackendTimeout() != 3*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Source.BackendTimeout())
	}
	if cfg.Redis.SnapshotTTL() != 45*time.Second {
		t.Fatalf("unexpected ttl %v", cfg.Redis.SnapshotTTL())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown source":   {"SOURCE_KIND": "ftp"},
		"postgres no dsn":  {"SOURCE_KIND": "postgres", "POSTGRES_DSN": ""},
		"bad timezone":     {"SOURCE_KIND": "remote", "VIEW_TIMEZONE": "Mars/Olympus"},
		"bad redis number": {"REDIS_DB": "first"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for key, value := range env {
				t.Setenv(key, value)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
