// Package bootstrap opens the configured ticket source and the stores
// around it. Both the HTTP server and vexctl start from here.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vex-labs/ticket-view/internal/config"
	"github.com/vex-labs/ticket-view/internal/persistence"
	"github.com/vex-labs/ticket-view/internal/repository"
	"github.com/vex-labs/ticket-view/internal/service"
)

// Check is a named dependency probe.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Backend is an opened source plus what was needed to open it.
type Backend struct {
	Source repository.Source
	// Commander and UserCommander are nil for mirror sources, which cannot
	// change anything.
	Commander     repository.TicketCommander
	UserCommander repository.UserCommander
	// Importer is nil for the remote source.
	Importer repository.Importer
	// Cache is nil when redis is not configured.
	Cache  *repository.CachedSource
	Checks []Check

	closers []func()
}

// Open connects the source selected by cfg.Source.Kind and, when redis is
// configured, wraps it in the snapshot cache.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	b := &Backend{}
	switch cfg.Source.Kind {
	case config.SourceRemote:
		remote := repository.NewRemoteRepository(cfg.Source.BackendURL, cfg.Source.BackendTimeout(), logger)
		b.Source = remote
		b.Commander = remote
		b.UserCommander = remote
		b.Checks = append(b.Checks, Check{Name: "backend", Ping: remote.Ping})
	case config.SourcePostgres:
		mirror, err := b.openPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		b.Source = mirror
		b.Importer = mirror
	case config.SourceSQLite:
		store, err := b.openSQLite(ctx, cfg.Source.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		b.Source = store
		b.Importer = store
	default:
		return nil, fmt.Errorf("unsupported source %q", cfg.Source.Kind)
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	if rdb.Enabled() {
		b.closers = append(b.closers, rdb.Close)
		b.Checks = append(b.Checks, Check{Name: "redis", Ping: rdb.Ping})
		b.Cache = repository.NewCachedSource(b.Source, rdb.Client, cfg.Redis.SnapshotTTL(), logger)
		b.Source = b.Cache
	}
	return b, nil
}

// OpenImporter opens only the mirror named by target, for loading fixtures.
func OpenImporter(ctx context.Context, cfg *config.Config, target string, logger *zap.Logger) (*Backend, error) {
	b := &Backend{}
	switch target {
	case config.SourcePostgres:
		if cfg.Postgres.DSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required for target %q", target)
		}
		mirror, err := b.openPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		b.Source = mirror
		b.Importer = mirror
	case config.SourceSQLite:
		store, err := b.openSQLite(ctx, cfg.Source.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		b.Source = store
		b.Importer = store
	default:
		return nil, fmt.Errorf("unsupported import target %q", target)
	}
	return b, nil
}

// Invalidator returns the cache as an invalidator, or nil without one.
func (b *Backend) Invalidator() service.Invalidator {
	if b.Cache == nil {
		return nil
	}
	return b.Cache
}

// Close releases connections in reverse opening order.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

func (b *Backend) openPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repository.PostgresMirror, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	b.closers = append(b.closers, pg.Close)
	b.Checks = append(b.Checks, Check{Name: "postgres", Ping: pg.Ping})

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			b.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return repository.NewPostgresMirror(pg.PoolHandle()), nil
}

func (b *Backend) openSQLite(ctx context.Context, path string, logger *zap.Logger) (*repository.SQLiteStore, error) {
	db, err := persistence.NewSQLite(ctx, path, logger)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	b.closers = append(b.closers, db.Close)
	b.Checks = append(b.Checks, Check{Name: "sqlite", Ping: db.Ping})
	return repository.NewSQLiteStore(db.DB), nil
}
