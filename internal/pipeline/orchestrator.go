// Package pipeline drives one full generation pass over a job: ordering,
// budgeting, resume, and the strictly sequential per-section loop.
package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"article-server/internal/ai"
	briefparse "article-server/internal/brief"
	"article-server/internal/discourse"
	"article-server/internal/flow"
	"article-server/internal/models"
	"article-server/internal/ordering"
	"article-server/internal/repository"
	"article-server/internal/validation"
)

// Sections are generated strictly sequentially: each section's discourse
// context depends on the previous section's final persisted text. The fixed
// delay between sections keeps providers from rate-limiting the pass.
const defaultSectionDelay = 2 * time.Second

var headingLine = regexp.MustCompile(`(?m)^(##|###)\s+(.+?)\s*$`)

// SectionGenerator abstracts the validation gate for the orchestrator.
type SectionGenerator interface {
	GenerateWithRetry(ctx context.Context, req validation.GenerateRequest) (string, error)
}

// OnSectionComplete is invoked after every persisted section.
type OnSectionComplete func(key, heading string, completed, total int)

// PassOptions configure one generation pass.
type PassOptions struct {
	// MaxSectionsOverride wins over every other section-count source.
	MaxSectionsOverride int
	// RespectTopicType lets an explicit short/comprehensive topic type pick
	// the preset.
	RespectTopicType bool
	Preset           string
	ValidationMode   models.ValidationMode
	MaxRetries       int
	Provider         ai.Settings
	SectionDelay     time.Duration
}

// Orchestrator executes generation passes.
type Orchestrator struct {
	jobs     repository.JobRepository
	sections repository.SectionRepository
	gate     SectionGenerator
	logger   *zap.Logger
}

// NewOrchestrator wires the pipeline orchestrator.
func NewOrchestrator(jobs repository.JobRepository, sections repository.SectionRepository, gate SectionGenerator, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     jobs,
		sections: sections,
		gate:     gate,
		logger:   logger.Named("PipelineOrchestrator"),
	}
}

// ExecutePass generates every pending section of the job in ranked order and
// returns the assembled full draft. Completed sections from an earlier run
// are skipped; the last of them seeds the discourse chain. A set shouldAbort
// flag stops the pass cleanly with models.ErrPassAborted.
func (o *Orchestrator) ExecutePass(
	ctx context.Context,
	job *models.GenerationJob,
	contentBrief *models.ContentBrief,
	business models.BusinessInfo,
	onComplete OnSectionComplete,
	shouldAbort func() bool,
	opts PassOptions,
) (string, error) {
	log := o.logger.With(zap.String("job_id", job.ID.String()), zap.Int("pass", job.PassNumber))

	sectionCount := resolveSectionCount(contentBrief, opts)
	length := resolveLengthGuidance(contentBrief, opts, sectionCount)
	defs := o.rankSections(contentBrief, sectionCount)
	total := len(defs)
	if total == 0 {
		return "", fmt.Errorf("job %s: brief outline produced no sections", job.ID)
	}

	log.Info("Starting generation pass",
		zap.Int("sections", total),
		zap.Int("min_words", length.MinWords),
		zap.Int("max_words", length.MaxWords),
		zap.String("mode", string(opts.ValidationMode)))

	// Persisted state is authoritative on resume; never trust the counters
	// carried in the job message.
	existing, err := o.sections.GetSections(ctx, job.ID)
	if err != nil {
		return "", err
	}
	byKey := make(map[string]models.SectionRecord, len(existing))
	for _, rec := range existing {
		byKey[rec.Key] = rec
	}

	completed := 0
	prevText := ""
	for _, def := range defs {
		rec, ok := byKey[def.Key]
		if ok && rec.Status == models.SectionStatusCompleted && rec.Text != "" {
			completed++
			prevText = rec.Text
		}
	}
	if completed > 0 {
		log.Info("Resuming pass with previously completed sections", zap.Int("completed", completed))
	}

	delay := opts.SectionDelay
	if delay <= 0 {
		delay = defaultSectionDelay
	}

	for i, def := range defs {
		if rec, ok := byKey[def.Key]; ok && rec.Status == models.SectionStatusCompleted && rec.Text != "" {
			prevText = rec.Text
			continue
		}

		// Cancellation is polled only at section boundaries; an in-flight
		// provider call finishes or times out on its own.
		if shouldAbort != nil && shouldAbort() {
			log.Info("Abort requested, stopping pass before section", zap.String("section_key", def.Key))
			return "", models.ErrPassAborted
		}

		guidance := flow.BuildGuidance(def, defs, contentBrief, business)

		text, err := o.gate.GenerateWithRetry(ctx, validation.GenerateRequest{
			Section:    def,
			Brief:      contentBrief,
			Business:   business,
			Siblings:   defs,
			Discourse:  discourse.BuildContext(prevText),
			Flow:       guidance,
			Length:     length,
			Mode:       opts.ValidationMode,
			Settings:   opts.Provider,
			MaxRetries: opts.MaxRetries,
			PassNumber: job.PassNumber,
		})
		if err != nil {
			// The failed section is never persisted as complete.
			return "", fmt.Errorf("job %s: %w", job.ID, err)
		}

		finalHeading := def.Heading
		if def.GenerateHeading {
			finalHeading = parseGeneratedHeading(text, contentBrief.CentralEntity)
		}

		record := &models.SectionRecord{
			JobID:     job.ID,
			Key:       def.Key,
			Heading:   finalHeading,
			Level:     def.Level,
			SortOrder: i,
			Status:    models.SectionStatusCompleted,
			Text:      text,
			Pass:      job.PassNumber,
		}
		if err := o.sections.UpsertSection(ctx, record); err != nil {
			return "", err
		}

		prevText = text
		completed++
		if err := o.jobs.UpdateProgress(ctx, job.ID, models.JobProgress{
			CompletedSections: completed,
			CurrentSectionKey: def.Key,
			Status:            models.JobStatusGenerating,
		}); err != nil {
			return "", err
		}

		if onComplete != nil {
			onComplete(def.Key, finalHeading, completed, total)
		}

		if i < total-1 {
			if err := sleepCtx(ctx, delay); err != nil {
				return "", err
			}
		}
	}

	draft, err := o.sections.AssembleDraft(ctx, job.ID)
	if err != nil {
		return "", err
	}
	if err := o.jobs.UpdateProgress(ctx, job.ID, models.JobProgress{
		CompletedSections: completed,
		Status:            models.JobStatusCompleted,
	}); err != nil {
		return "", err
	}

	log.Info("Generation pass complete", zap.Int("sections", completed), zap.Int("draft_chars", len(draft)))
	return draft, nil
}

// rankSections classifies ungraded outline nodes, orders the outline, and
// flattens it into section definitions capped at sectionCount.
func (o *Orchestrator) rankSections(contentBrief *models.ContentBrief, sectionCount int) []models.SectionDefinition {
	outline := make([]models.BriefSection, len(contentBrief.Outline))
	copy(outline, contentBrief.Outline)
	for i := range outline {
		if outline[i].Category == "" {
			outline[i].Category = ordering.InferCategory(outline[i].Heading, contentBrief.CentralEntity)
		}
	}

	ranked := *contentBrief
	ranked.Outline = ordering.OrderSections(outline)

	return briefparse.ParseSections(&ranked, briefparse.ParseOptions{
		MaxSections: sectionCount,
		Language:    contentBrief.Language,
	})
}

// parseGeneratedHeading pulls the AI-generated heading out of the section
// text, falling back to a placeholder derived from the central entity.
func parseGeneratedHeading(text, centralEntity string) string {
	if m := headingLine.FindStringSubmatch(text); m != nil {
		return m[2]
	}
	if centralEntity != "" {
		return "More about " + strings.TrimSpace(centralEntity)
	}
	return "Untitled section"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
