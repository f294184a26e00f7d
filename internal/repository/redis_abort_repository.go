package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ AbortRepository = (*redisAbortRepository)(nil)

// Abort flags expire on their own; a stale flag must not cancel a future
// re-run of the same job.
const abortFlagTTL = 24 * time.Hour

type redisAbortRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisAbortRepository creates a Redis-backed AbortRepository.
func NewRedisAbortRepository(client *redis.Client, logger *zap.Logger) AbortRepository {
	return &redisAbortRepository{
		client: client,
		logger: logger.Named("RedisAbortRepo"),
	}
}

func abortKey(jobID uuid.UUID) string {
	return fmt.Sprintf("generation:abort:%s", jobID)
}

func (r *redisAbortRepository) RequestAbort(ctx context.Context, jobID uuid.UUID) error {
	err := r.client.Set(ctx, abortKey(jobID), "1", abortFlagTTL).Err()
	if err != nil {
		r.logger.Error("Failed to set abort flag", zap.String("job_id", jobID.String()), zap.Error(err))
		return fmt.Errorf("failed to set abort flag for job %s: %w", jobID, err)
	}
	return nil
}

func (r *redisAbortRepository) IsAbortRequested(ctx context.Context, jobID uuid.UUID) (bool, error) {
	err := r.client.Get(ctx, abortKey(jobID)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.logger.Error("Failed to read abort flag", zap.String("job_id", jobID.String()), zap.Error(err))
		return false, fmt.Errorf("failed to read abort flag for job %s: %w", jobID, err)
	}
	return true, nil
}

func (r *redisAbortRepository) ClearAbort(ctx context.Context, jobID uuid.UUID) error {
	if err := r.client.Del(ctx, abortKey(jobID)).Err(); err != nil {
		r.logger.Error("Failed to clear abort flag", zap.String("job_id", jobID.String()), zap.Error(err))
		return fmt.Errorf("failed to clear abort flag for job %s: %w", jobID, err)
	}
	return nil
}
