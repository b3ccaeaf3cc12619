package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

// Opener opens a connection pool for the given parameters.
type Opener func(ctx context.Context, params Params) (*sql.DB, error)

// NewOpener returns an Opener bound to a pool configuration.
func NewOpener(cfg PoolConfig) Opener {
	return func(ctx context.Context, params Params) (*sql.DB, error) {
		return Open(ctx, params, cfg)
	}
}

func Open(ctx context.Context, params Params, cfg PoolConfig) (*sql.DB, error) {
	if params.Host == "" || params.Database == "" {
		return nil, fmt.Errorf("database host and name are required")
	}

	db, err := sql.Open(params.Dialect.DriverName(), params.DSN())
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", params.Dialect, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", params.Dialect, err)
	}

	return db, nil
}
