// Package database owns the postgres connection and schema migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"

	_ "github.com/lib/pq"

	"github.com/yokitheyo/imagestore/internal/config"
	"github.com/yokitheyo/imagestore/internal/helpers"
)

// Connect opens the master (and optional slave) connections, retrying the
// initial ping so the service survives starting before the database does.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*dbpg.DB, error) {
	opts := &dbpg.Options{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeSec) * time.Second,
	}

	db, err := dbpg.New(cfg.DSN, helpers.SplitAndTrim(cfg.Slaves, ","), opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = 1
	}
	delay := time.Duration(cfg.ConnectRetryDelaySec) * time.Second

	var pingErr error
	for attempt := 1; attempt <= retries; attempt++ {
		pingErr = db.Master.PingContext(ctx)
		if pingErr == nil {
			zlog.Logger.Info().Int("attempt", attempt).Msg("database connection established")
			return db, nil
		}

		zlog.Logger.Warn().
			Err(pingErr).
			Int("attempt", attempt).
			Int("retries", retries).
			Msg("database not reachable yet")

		if attempt < retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, fmt.Errorf("ping database after %d attempts: %w", retries, pingErr)
}

// RunMigrations applies the goose migrations from the given directory.
func RunMigrations(db *sql.DB, path string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, path); err != nil {
		return fmt.Errorf("apply migrations from %s: %w", path, err)
	}
	zlog.Logger.Info().Str("path", path).Msg("migrations applied")
	return nil
}
