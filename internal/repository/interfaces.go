// Package repository persists generation jobs and their sections. The
// orchestrator is the single writer per job; persisted state is authoritative
// over any cached counters.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"article-server/internal/models"
)

// DBTX accepts either a pgx pool or a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// JobRepository stores generation jobs.
type JobRepository interface {
	Create(ctx context.Context, job *models.GenerationJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error)
	// UpdateProgress persists the per-section progress patch.
	UpdateProgress(ctx context.Context, id uuid.UUID, progress models.JobProgress) error
	// SetStatus updates the terminal status, with optional error details.
	SetStatus(ctx context.Context, id uuid.UUID, status models.JobStatus, errorDetails string) error
}

// SectionRepository stores the per-section records of a job.
type SectionRepository interface {
	// GetSections returns the job's sections ordered by sort order.
	GetSections(ctx context.Context, jobID uuid.UUID) ([]models.SectionRecord, error)
	UpsertSection(ctx context.Context, record *models.SectionRecord) error
	// AssembleDraft joins all completed sections of a job, in order, into the
	// full article draft.
	AssembleDraft(ctx context.Context, jobID uuid.UUID) (string, error)
}

// AbortRepository stores cooperative cancellation flags, polled at section
// boundaries.
type AbortRepository interface {
	RequestAbort(ctx context.Context, jobID uuid.UUID) error
	IsAbortRequested(ctx context.Context, jobID uuid.UUID) (bool, error)
	ClearAbort(ctx context.Context, jobID uuid.UUID) error
}
