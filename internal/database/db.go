package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DBInterface is what the rest of the service needs from a connection.
type DBInterface interface {
	Ping(ctx context.Context) error
	Close()
}

// DB is a PostgreSQL connection pool.
type DB struct {
	Pool   *pgxpool.Pool
	Logger *zap.Logger
}

// Options tune the pool. Zero values keep pgx defaults.
type Options struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// NewDB opens a pool for dsn and checks that the server answers.
func NewDB(ctx context.Context, dsn string, opts Options, logger *zap.Logger) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		config.MaxConnLifetime = opts.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	db := &DB{Pool: pool, Logger: logger}
	if err := db.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to postgres", zap.Int32("max_conns", config.MaxConns))
	return db, nil
}

// Ping checks the connection with a short timeout.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Pool.Ping(ctx)
}

// Close closes the pool.
func (db *DB) Close() {
	db.Pool.Close()
}
