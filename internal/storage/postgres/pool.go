// Package postgres persists player statistics in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skyjump/internal/config"
)

// ErrSchemaMissing is returned by NewPool when the players table does not
// exist. Run the migrate command first.
var ErrSchemaMissing = errors.New("players table missing")

// connectTimeout bounds the startup ping and schema check.
const connectTimeout = 5 * time.Second

// Pool owns the connection pool backing a PlayerRepository.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the configured database and checks that the players
// schema has been migrated.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a ready Pool, or a non-nil error with no open
// connections. A database without the players table yields ErrSchemaMissing.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	p := &Pool{pool: pool}
	if err := p.Health(ctx, connectTimeout); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := p.checkSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Health pings the database within timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

func (p *Pool) checkSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	var exists bool
	err := p.pool.QueryRow(ctx, `SELECT to_regclass('players') IS NOT NULL`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}
	if !exists {
		return ErrSchemaMissing
	}
	return nil
}

// Close releases all connections. The pool is unusable afterwards.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgx pool for repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
