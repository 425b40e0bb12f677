// Package database открывает пулы database/sql для хранилищ и миграций.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// PoolOptions задаёт параметры пула соединений.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresPool - настройки для кратких сессий миграций.
var PostgresPool = PoolOptions{
	MaxOpenConns:    10,
	MaxIdleConns:    10,
	ConnMaxLifetime: 3 * time.Minute,
}

// SQLitePool - один писатель: SQLite не допускает параллельных транзакций на запись.
var SQLitePool = PoolOptions{
	MaxOpenConns: 1,
	MaxIdleConns: 1,
}

// NewDB открывает пул и проверяет соединение за pingTimeout.
func NewDB(driver, dsn string, opts PoolOptions, pingTimeout time.Duration, logger *zap.SugaredLogger) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	logger.Debugw("Database pool opened", "driver", driver, "maxOpenConns", opts.MaxOpenConns)
	return db, nil
}
