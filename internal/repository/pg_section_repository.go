package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"article-server/internal/models"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ SectionRepository = (*pgSectionRepository)(nil)

const (
	getSectionsQuery = `
        SELECT job_id, section_key, heading, level, sort_order, status, generated_text, pass_number, updated_at
        FROM job_sections
        WHERE job_id = $1
        ORDER BY sort_order`

	upsertSectionQuery = `
        INSERT INTO job_sections
        (job_id, section_key, heading, level, sort_order, status, generated_text, pass_number, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (job_id, section_key) DO UPDATE SET
            heading = EXCLUDED.heading,
            level = EXCLUDED.level,
            sort_order = EXCLUDED.sort_order,
            status = EXCLUDED.status,
            generated_text = EXCLUDED.generated_text,
            pass_number = EXCLUDED.pass_number,
            updated_at = EXCLUDED.updated_at`

	completedSectionsQuery = `
        SELECT job_id, section_key, heading, level, sort_order, status, generated_text, pass_number, updated_at
        FROM job_sections
        WHERE job_id = $1 AND status = $2
        ORDER BY sort_order`
)

type pgSectionRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgSectionRepository creates a PostgreSQL-backed SectionRepository.
func NewPgSectionRepository(db DBTX, logger *zap.Logger) SectionRepository {
	return &pgSectionRepository{
		db:     db,
		logger: logger.Named("PgSectionRepo"),
	}
}

func (r *pgSectionRepository) GetSections(ctx context.Context, jobID uuid.UUID) ([]models.SectionRecord, error) {
	var records []models.SectionRecord
	err := pgxscan.Select(ctx, r.db, &records, getSectionsQuery, jobID)
	if err != nil {
		r.logger.Error("Failed to get job sections", zap.String("job_id", jobID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get sections for job %s: %w", jobID, err)
	}
	return records, nil
}

func (r *pgSectionRepository) UpsertSection(ctx context.Context, record *models.SectionRecord) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}
	_, err := r.db.Exec(ctx, upsertSectionQuery,
		record.JobID, record.Key, record.Heading, record.Level, record.SortOrder,
		record.Status, record.Text, record.Pass, record.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert job section",
			zap.String("job_id", record.JobID.String()),
			zap.String("section_key", record.Key),
			zap.Error(err))
		return fmt.Errorf("failed to upsert section '%s' of job %s: %w", record.Key, record.JobID, err)
	}
	return nil
}

// AssembleDraft joins the completed sections in order. Sections whose text
// already starts with a markdown heading keep it; others get one derived from
// the stored heading and level.
func (r *pgSectionRepository) AssembleDraft(ctx context.Context, jobID uuid.UUID) (string, error) {
	var records []models.SectionRecord
	err := pgxscan.Select(ctx, r.db, &records, completedSectionsQuery, jobID, models.SectionStatusCompleted)
	if err != nil {
		r.logger.Error("Failed to load completed sections for draft", zap.String("job_id", jobID.String()), zap.Error(err))
		return "", fmt.Errorf("failed to assemble draft for job %s: %w", jobID, err)
	}

	var sb strings.Builder
	for i, rec := range records {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		text := strings.TrimSpace(rec.Text)
		if !strings.HasPrefix(text, "#") && rec.Heading != "" {
			sb.WriteString(headingPrefix(rec.Level))
			sb.WriteString(rec.Heading)
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func headingPrefix(level int) string {
	if level >= 2 {
		return "### "
	}
	return "## "
}
