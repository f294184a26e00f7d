// Package worker consumes article generation tasks and drives the pipeline.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"article-server/internal/messaging"
	"article-server/internal/models"
	"article-server/internal/pipeline"
	"article-server/internal/repository"
	"article-server/internal/validation"
)

// PassExecutor abstracts the pipeline orchestrator.
type PassExecutor interface {
	ExecutePass(
		ctx context.Context,
		job *models.GenerationJob,
		contentBrief *models.ContentBrief,
		business models.BusinessInfo,
		onComplete pipeline.OnSectionComplete,
		shouldAbort func() bool,
		opts pipeline.PassOptions,
	) (string, error)
}

// Defaults hold the task options applied when the payload leaves them unset.
type Defaults struct {
	Preset           string
	RespectTopicType bool
	ValidationMode   models.ValidationMode
	MaxRetries       int
	SectionDelay     time.Duration
}

// TaskHandler processes one generation task end to end: it resolves the job
// record, runs the pass, persists the terminal status and notifies the
// updates queue.
type TaskHandler struct {
	executor PassExecutor
	jobs     repository.JobRepository
	sections repository.SectionRepository
	aborts   repository.AbortRepository
	notifier messaging.Notifier
	defaults Defaults
	logger   *zap.Logger
}

// NewTaskHandler wires a task handler.
func NewTaskHandler(
	executor PassExecutor,
	jobs repository.JobRepository,
	sections repository.SectionRepository,
	aborts repository.AbortRepository,
	notifier messaging.Notifier,
	defaults Defaults,
	logger *zap.Logger,
) *TaskHandler {
	return &TaskHandler{
		executor: executor,
		jobs:     jobs,
		sections: sections,
		aborts:   aborts,
		notifier: notifier,
		defaults: defaults,
		logger:   logger.Named("TaskHandler"),
	}
}

// Handle processes a single generation task. The returned error is the
// consumer's requeue signal; a cleanly aborted pass returns nil.
func (h *TaskHandler) Handle(ctx context.Context, payload messaging.ArticleGenerationTaskPayload) error {
	recordTaskReceived()
	startTime := time.Now()
	log := h.logger.With(zap.String("task_id", payload.TaskID), zap.String("user_id", payload.UserID))
	log.Info("Processing generation task",
		zap.String("title", payload.Brief.Title),
		zap.Int("pass", payload.PassNumber))

	status := "success"
	reason := ""
	defer func() {
		recordTaskResult(status, reason, time.Since(startTime))
		log.Info("Task finished", zap.String("status", status), zap.Duration("took", time.Since(startTime)))
	}()

	job, err := h.resolveJob(ctx, payload)
	if err != nil {
		status, reason = "failed", "job_resolve"
		h.notifyError(ctx, payload, job, err)
		return err
	}

	if job.Status == models.JobStatusCompleted {
		// Redelivery of an already finished task; answer with the stored draft.
		log.Info("Job already completed, replaying result", zap.String("job_id", job.ID.String()))
		draft, assembleErr := h.sections.AssembleDraft(ctx, job.ID)
		if assembleErr != nil {
			status, reason = "failed", "assemble"
			return assembleErr
		}
		return h.notifySuccess(ctx, payload, job, draft)
	}

	if err := h.jobs.SetStatus(ctx, job.ID, models.JobStatusGenerating, ""); err != nil {
		status, reason = "failed", "status_update"
		return err
	}

	onComplete := func(key, heading string, completed, total int) {
		recordSectionGenerated()
		job.CompletedSections = completed
		job.TotalSections = total
		progressErr := h.notifier.Progress(ctx, messaging.ProgressPayload{
			TaskID:            payload.TaskID,
			UserID:            payload.UserID,
			JobID:             job.ID.String(),
			SectionKey:        key,
			SectionHeading:    heading,
			CompletedSections: completed,
			TotalSections:     total,
		})
		if progressErr != nil {
			// Progress updates are best effort; the pass keeps going.
			log.Warn("Failed to publish progress update", zap.String("section", key), zap.Error(progressErr))
		}
	}

	shouldAbort := func() bool {
		requested, abortErr := h.aborts.IsAbortRequested(ctx, job.ID)
		if abortErr != nil {
			log.Warn("Abort flag check failed", zap.Error(abortErr))
			return false
		}
		return requested
	}

	draft, passErr := h.executor.ExecutePass(ctx, job, &payload.Brief, payload.Business, onComplete, shouldAbort, h.passOptions(payload))

	switch {
	case passErr == nil:
		if err := h.jobs.SetStatus(ctx, job.ID, models.JobStatusCompleted, ""); err != nil {
			status, reason = "failed", "status_update"
			return err
		}
		return h.notifySuccess(ctx, payload, job, draft)

	case errors.Is(passErr, models.ErrPassAborted):
		status = "aborted"
		log.Info("Pass aborted by user request", zap.String("job_id", job.ID.String()))
		if err := h.jobs.SetStatus(ctx, job.ID, models.JobStatusAborted, ""); err != nil {
			return err
		}
		if err := h.aborts.ClearAbort(ctx, job.ID); err != nil {
			log.Warn("Failed to clear abort flag", zap.Error(err))
		}
		h.notify(ctx, messaging.NotificationPayload{
			TaskID:            payload.TaskID,
			UserID:            payload.UserID,
			JobID:             job.ID.String(),
			Status:            messaging.NotificationStatusAborted,
			CompletedSections: job.CompletedSections,
			TotalSections:     job.TotalSections,
		})
		// The abort was honored; the message must not be requeued.
		return nil

	default:
		status, reason = "failed", failureReason(passErr)
		log.Error("Generation pass failed", zap.String("job_id", job.ID.String()), zap.Error(passErr))
		if err := h.jobs.SetStatus(ctx, job.ID, models.JobStatusFailed, passErr.Error()); err != nil {
			log.Error("Failed to persist failure status", zap.Error(err))
		}
		h.notifyError(ctx, payload, job, passErr)
		return passErr
	}
}

// resolveJob loads the job addressed by the task, creating it on first
// delivery. The stored record wins over the payload on redelivery.
func (h *TaskHandler) resolveJob(ctx context.Context, payload messaging.ArticleGenerationTaskPayload) (*models.GenerationJob, error) {
	jobID, err := uuid.Parse(payload.TaskID)
	if err != nil {
		return nil, fmt.Errorf("task id %q is not a valid job id: %w", payload.TaskID, err)
	}

	job, err := h.jobs.GetByID(ctx, jobID)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	passNumber := payload.PassNumber
	if passNumber <= 0 {
		passNumber = 1
	}
	job = &models.GenerationJob{
		ID:            jobID,
		UserID:        payload.UserID,
		Title:         payload.Brief.Title,
		CentralEntity: payload.Brief.CentralEntity,
		Language:      payload.Brief.Language,
		Status:        models.JobStatusPending,
		PassNumber:    passNumber,
	}
	if err := h.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job %s: %w", jobID, err)
	}
	return job, nil
}

func (h *TaskHandler) passOptions(payload messaging.ArticleGenerationTaskPayload) pipeline.PassOptions {
	opts := pipeline.PassOptions{
		MaxSectionsOverride: payload.MaxSectionsOverride,
		RespectTopicType:    h.defaults.RespectTopicType,
		Preset:              h.defaults.Preset,
		ValidationMode:      h.defaults.ValidationMode,
		MaxRetries:          h.defaults.MaxRetries,
		SectionDelay:        h.defaults.SectionDelay,
	}
	if payload.Preset != "" {
		opts.Preset = payload.Preset
	}
	if payload.ValidationMode != "" {
		opts.ValidationMode = models.ValidationMode(payload.ValidationMode)
	}
	if payload.Provider != "" {
		opts.Provider.Provider = payload.Provider
	}
	return opts
}

func (h *TaskHandler) notifySuccess(ctx context.Context, payload messaging.ArticleGenerationTaskPayload, job *models.GenerationJob, draft string) error {
	return h.notify(ctx, messaging.NotificationPayload{
		TaskID:            payload.TaskID,
		UserID:            payload.UserID,
		JobID:             job.ID.String(),
		Status:            messaging.NotificationStatusSuccess,
		CompletedSections: job.CompletedSections,
		TotalSections:     job.TotalSections,
		DraftText:         draft,
	})
}

func (h *TaskHandler) notifyError(ctx context.Context, payload messaging.ArticleGenerationTaskPayload, job *models.GenerationJob, cause error) {
	notification := messaging.NotificationPayload{
		TaskID:       payload.TaskID,
		UserID:       payload.UserID,
		Status:       messaging.NotificationStatusError,
		ErrorDetails: cause.Error(),
	}
	if job != nil {
		notification.JobID = job.ID.String()
		notification.CompletedSections = job.CompletedSections
		notification.TotalSections = job.TotalSections
	}
	h.notify(ctx, notification)
}

func (h *TaskHandler) notify(ctx context.Context, notification messaging.NotificationPayload) error {
	if err := h.notifier.Notify(ctx, notification); err != nil {
		h.logger.Error("Failed to publish notification",
			zap.String("task_id", notification.TaskID), zap.Error(err))
		return err
	}
	return nil
}

func failureReason(err error) string {
	var validationErr *validation.ValidationFailedError
	switch {
	case errors.As(err, &validationErr):
		return "validation_rejected"
	case errors.Is(err, models.ErrNoProvidersConfigured):
		return "no_providers"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "generation_error"
	}
}
