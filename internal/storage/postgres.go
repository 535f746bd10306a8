package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/AD-em/orphan-database/internal/config"
)

const defaultDBTimeout = 5 * time.Second

// NewPostgresPool connects to PostgreSQL using pgx.
func NewPostgresPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultDBTimeout)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// migrationStep is one idempotent schema statement applied on boot.
type migrationStep struct {
	name string
	stmt string
}

var migrationSteps = []migrationStep{
	{
		name: "create users table",
		stmt: `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	display_name TEXT,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
	},
	{
		name: "create sessions table",
		stmt: `
CREATE TABLE IF NOT EXISTS sessions (
	sid TEXT PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
	},
	{
		name: "index sessions by expiry",
		stmt: `CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at);`,
	},
}

// EnsureSchema applies the schema statements in order. Every statement is
// idempotent, so reapplying on every boot is safe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	for _, step := range migrationSteps {
		stepCtx, cancel := context.WithTimeout(ctx, defaultDBTimeout)
		_, err := pool.Exec(stepCtx, step.stmt)
		cancel()
		if err != nil {
			return fmt.Errorf("apply %s: %w", step.name, err)
		}
		logger.Debug("schema step applied", zap.String("step", step.name))
	}
	return nil
}
