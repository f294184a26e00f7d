// Package database owns the PostgreSQL pool and schema migrations.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"article-server/internal/config"
)

const (
	connectMaxRetries = 50
	connectRetryDelay = 3 * time.Second
	connectTimeout    = 5 * time.Second
)

// Connect builds the pgx pool, retrying until the database is reachable.
// Infrastructure often comes up in arbitrary order, so the worker waits for
// PostgreSQL instead of crash-looping.
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	log := logger.Named("Database")

	poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= connectMaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		pool, err = pgxpool.NewWithConfig(attemptCtx, poolConfig)
		if err == nil {
			err = pool.Ping(attemptCtx)
		}
		cancel()

		if err == nil {
			log.Info("Connected to PostgreSQL", zap.Int("attempt", attempt))
			return pool, nil
		}
		if pool != nil {
			pool.Close()
			pool = nil
		}

		log.Warn("PostgreSQL connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", connectMaxRetries),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectRetryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connectMaxRetries, err)
}
