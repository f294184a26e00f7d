package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle status of a generation job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusGenerating JobStatus = "generating"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusAborted    JobStatus = "aborted"
)

// GenerationJob is one article generation job. The orchestrator is the only
// writer; persisted state always wins over in-memory counters on resume.
type GenerationJob struct {
	ID                uuid.UUID `db:"id"`
	UserID            string    `db:"user_id"`
	Title             string    `db:"title"`
	CentralEntity     string    `db:"central_entity"`
	Language          string    `db:"language"`
	Status            JobStatus `db:"status"`
	PassNumber        int       `db:"pass_number"`
	TotalSections     int       `db:"total_sections"`
	CompletedSections int       `db:"completed_sections"`
	CurrentSectionKey string    `db:"current_section_key"`
	ErrorDetails      string    `db:"error_details"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// JobProgress is the patch written back after every completed section.
type JobProgress struct {
	CompletedSections int
	CurrentSectionKey string
	Status            JobStatus
}
