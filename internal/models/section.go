package models

import (
	"time"

	"github.com/google/uuid"
)

// SectionStatus is the persisted status of a single article section.
type SectionStatus string

const (
	SectionStatusPending    SectionStatus = "pending"
	SectionStatusGenerating SectionStatus = "generating"
	SectionStatusCompleted  SectionStatus = "completed"
	SectionStatusFailed     SectionStatus = "failed"
)

// SectionDefinition describes one section to generate. Created once per job
// from the content brief and immutable during generation, except for the final
// heading when GenerateHeading is set.
type SectionDefinition struct {
	Key                    string
	Heading                string
	Level                  int
	Order                  int
	MandatoryFirstSentence string
	GenerateHeading        bool
}

// SectionRecord is the persisted row for a section of a job.
type SectionRecord struct {
	JobID     uuid.UUID     `db:"job_id"`
	Key       string        `db:"section_key"`
	Heading   string        `db:"heading"`
	Level     int           `db:"level"`
	SortOrder int           `db:"sort_order"`
	Status    SectionStatus `db:"status"`
	Text      string        `db:"generated_text"`
	Pass      int           `db:"pass_number"`
	UpdatedAt time.Time     `db:"updated_at"`
}
