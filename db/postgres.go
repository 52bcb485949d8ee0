package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

var ErrNoDatabaseURL = errors.New("DATABASE_URL is not set")

var DB *sql.DB

// PoolOptions sizes the Postgres connection pool backing DB.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Connect opens the payout rate database and verifies it answers a ping
// within timeout.
func Connect(connStr string, pool PoolOptions, timeout time.Duration) error {
	if connStr == "" {
		return ErrNoDatabaseURL
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}

	conn.SetMaxOpenConns(pool.MaxOpenConns)
	conn.SetMaxIdleConns(pool.MaxIdleConns)
	conn.SetConnMaxLifetime(pool.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}

	slog.Info("postgres connected",
		"max_open_conns", pool.MaxOpenConns,
		"max_idle_conns", pool.MaxIdleConns,
		"conn_max_lifetime", pool.ConnMaxLifetime.String())

	DB = conn
	return nil
}

func Close() {
	if DB != nil {
		DB.Close()
	}
}
