package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"article-server/internal/models"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ JobRepository = (*pgJobRepository)(nil)

const (
	createJobQuery = `
        INSERT INTO generation_jobs
        (id, user_id, title, central_entity, language, status, pass_number, total_sections, completed_sections, current_section_key, error_details, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`

	getJobByIDQuery = `
        SELECT id, user_id, title, central_entity, language, status, pass_number, total_sections, completed_sections, current_section_key, error_details, created_at, updated_at
        FROM generation_jobs
        WHERE id = $1`

	updateJobProgressQuery = `
        UPDATE generation_jobs
        SET completed_sections = $2, current_section_key = $3, status = $4, updated_at = $5
        WHERE id = $1`

	setJobStatusQuery = `
        UPDATE generation_jobs
        SET status = $2, error_details = $3, updated_at = $4
        WHERE id = $1`
)

type pgJobRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgJobRepository creates a PostgreSQL-backed JobRepository.
func NewPgJobRepository(db DBTX, logger *zap.Logger) JobRepository {
	return &pgJobRepository{
		db:     db,
		logger: logger.Named("PgJobRepo"),
	}
}

func (r *pgJobRepository) Create(ctx context.Context, job *models.GenerationJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	_, err := r.db.Exec(ctx, createJobQuery,
		job.ID, job.UserID, job.Title, job.CentralEntity, job.Language,
		job.Status, job.PassNumber, job.TotalSections, job.CompletedSections,
		job.CurrentSectionKey, job.ErrorDetails, job.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create generation job", zap.String("job_id", job.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to create generation job %s: %w", job.ID, err)
	}
	return nil
}

func (r *pgJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	var job models.GenerationJob
	err := pgxscan.Get(ctx, r.db, &job, getJobByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get generation job", zap.String("job_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get generation job %s: %w", id, err)
	}
	return &job, nil
}

func (r *pgJobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, progress models.JobProgress) error {
	tag, err := r.db.Exec(ctx, updateJobProgressQuery,
		id, progress.CompletedSections, progress.CurrentSectionKey, progress.Status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update job progress", zap.String("job_id", id.String()), zap.Error(err))
		return fmt.Errorf("failed to update progress for job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *pgJobRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.JobStatus, errorDetails string) error {
	tag, err := r.db.Exec(ctx, setJobStatusQuery, id, status, errorDetails, time.Now())
	if err != nil {
		r.logger.Error("Failed to set job status",
			zap.String("job_id", id.String()),
			zap.String("status", string(status)),
			zap.Error(err))
		return fmt.Errorf("failed to set status for job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
