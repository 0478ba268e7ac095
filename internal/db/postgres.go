// internal/db/postgres.go
package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The pool is process-wide: created on first use, then shared by every
// request. A failed first attempt leaves it unset so the next caller retries.
var (
	poolMu sync.Mutex
	pool   *pgxpool.Pool
)

// ConnectDB returns the shared pool, creating it on first call.
func ConnectDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolMu.Lock()
	defer poolMu.Unlock()

	if pool != nil {
		return pool, nil
	}
	if databaseURL == "" {
		return nil, errors.New("database url is not configured")
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	pool = p
	return pool, nil
}

// CloseDB closes the shared pool if it was ever opened.
func CloseDB() {
	poolMu.Lock()
	defer poolMu.Unlock()

	if pool != nil {
		pool.Close()
		pool = nil
	}
}
