package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"train-station/internal/config"
	"train-station/internal/database/migrations"
	"train-station/internal/logger"
	"train-station/internal/store"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

func open(cfg config.DatabaseConfig) (*bun.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return store.OpenSQLite(cfg.SQLitePath)
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, errors.New("POSTGRES_DSN not set")
		}
		return store.OpenPostgres(cfg.PostgresDSN, store.PoolConfig{
			MaxOpenConns: cfg.MaxOpenConns,
			MaxIdleConns: cfg.MaxIdleConns,
			MaxLifetime:  cfg.MaxLifetime,
		})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// connect opens the configured database and retries the ping while it comes up.
func connect(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*store.DB, error) {
	var lastErr error
	for i := 0; i < connectAttempts; i++ {
		log.Info("DATABASE", fmt.Sprintf("Connecting to %s (attempt %d/%d)", cfg.Driver, i+1, connectAttempts))

		bunDB, err := open(cfg)
		if err != nil {
			return nil, err
		}
		if err = bunDB.PingContext(ctx); err == nil {
			log.Info("DATABASE", fmt.Sprintf("%s connection successful", cfg.Driver))
			return store.New(bunDB), nil
		}
		_ = bunDB.Close()
		lastErr = err
		log.Error("DATABASE", fmt.Sprintf("Failed to connect: %v", err))

		if i < connectAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(connectBackoff):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect after %d attempts: %w", connectAttempts, lastErr)
}

// prepareSchema creates SQLite tables from the models, or applies the SQL migrations
// to Postgres when AUTO_MIGRATE is on.
func prepareSchema(ctx context.Context, db *store.DB, cfg config.DatabaseConfig, log *logger.Logger) error {
	if cfg.Driver == "sqlite" {
		log.LogDatabase("CREATE", "schema", "creating sqlite schema from models")
		return store.CreateSchema(ctx, db.Bun)
	}
	if !cfg.AutoMigrate {
		return nil
	}
	// The runner is not closed here; closing it would close db as well.
	return migrations.NewRunner(db.Bun.DB, cfg.MigrationsDir, log).Up()
}
