package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"article-server/internal/messaging"
	"article-server/internal/mocks"
	"article-server/internal/models"
	"article-server/internal/worker"
)

type handlerFixture struct {
	executor *mocks.MockPassExecutor
	jobs     *mocks.MockJobRepository
	sections *mocks.MockSectionRepository
	aborts   *mocks.MockAbortRepository
	notifier *mocks.MockNotifier
	handler  *worker.TaskHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	f := &handlerFixture{
		executor: mocks.NewMockPassExecutor(t),
		jobs:     mocks.NewMockJobRepository(t),
		sections: mocks.NewMockSectionRepository(t),
		aborts:   mocks.NewMockAbortRepository(t),
		notifier: mocks.NewMockNotifier(t),
	}
	f.handler = worker.NewTaskHandler(f.executor, f.jobs, f.sections, f.aborts, f.notifier, worker.Defaults{
		Preset:         "standard",
		ValidationMode: models.ValidationModeSoft,
		MaxRetries:     2,
		SectionDelay:   time.Millisecond,
	}, zap.NewNop())
	return f
}

func newTaskPayload(taskID string) messaging.ArticleGenerationTaskPayload {
	return messaging.ArticleGenerationTaskPayload{
		TaskID: taskID,
		UserID: "user-7",
		Brief: models.ContentBrief{
			Title:         "Composting for Beginners",
			CentralEntity: "composting",
			Language:      "en",
			Outline:       []models.BriefSection{{Key: "basics", Heading: "The basics"}},
		},
	}
}

func TestHandle_SuccessfulTask(t *testing.T) {
	f := newHandlerFixture(t)
	jobID := uuid.New()
	payload := newTaskPayload(jobID.String())

	f.jobs.On("GetByID", mock.Anything, jobID).Return(nil, models.ErrNotFound).Once()
	f.jobs.On("Create", mock.Anything, mock.MatchedBy(func(job *models.GenerationJob) bool {
		return job.ID == jobID && job.UserID == "user-7" && job.PassNumber == 1
	})).Return(nil).Once()
	f.jobs.On("SetStatus", mock.Anything, jobID, models.JobStatusGenerating, "").Return(nil).Once()
	f.executor.On("ExecutePass", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("the assembled draft", nil).Once()
	f.jobs.On("SetStatus", mock.Anything, jobID, models.JobStatusCompleted, "").Return(nil).Once()

	var notified messaging.NotificationPayload
	f.notifier.On("Notify", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			notified = args.Get(1).(messaging.NotificationPayload)
		}).
		Return(nil).Once()

	err := f.handler.Handle(context.Background(), payload)

	assert.NoError(t, err)
	assert.Equal(t, messaging.NotificationStatusSuccess, notified.Status)
	assert.Equal(t, "the assembled draft", notified.DraftText)
	assert.Equal(t, jobID.String(), notified.JobID)
}

func TestHandle_AbortedPassAcksAndClearsFlag(t *testing.T) {
	f := newHandlerFixture(t)
	jobID := uuid.New()
	payload := newTaskPayload(jobID.String())

	f.jobs.On("GetByID", mock.Anything, jobID).Return(&models.GenerationJob{
		ID:     jobID,
		UserID: "user-7",
		Status: models.JobStatusGenerating,
	}, nil).Once()
	f.jobs.On("SetStatus", mock.Anything, jobID, models.JobStatusGenerating, "").Return(nil).Once()
	f.executor.On("ExecutePass", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", models.ErrPassAborted).Once()
	f.jobs.On("SetStatus", mock.Anything, jobID, models.JobStatusAborted, "").Return(nil).Once()
	f.aborts.On("ClearAbort", mock.Anything, jobID).Return(nil).Once()

	var notified messaging.NotificationPayload
	f.notifier.On("Notify", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			notified = args.Get(1).(messaging.NotificationPayload)
		}).
		Return(nil).Once()

	err := f.handler.Handle(context.Background(), payload)

	// A honored abort is not a failure: the message must be acked.
	assert.NoError(t, err)
	assert.Equal(t, messaging.NotificationStatusAborted, notified.Status)
	f.aborts.AssertExpectations(t)
}

func TestHandle_FailedPassNotifiesAndPropagates(t *testing.T) {
	f := newHandlerFixture(t)
	jobID := uuid.New()
	payload := newTaskPayload(jobID.String())

	cause := errors.New("all providers exhausted")

	f.jobs.On("GetByID", mock.Anything, jobID).Return(nil, models.ErrNotFound).Once()
	f.jobs.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.jobs.On("SetStatus", mock.Anything, jobID, models.JobStatusGenerating, "").Return(nil).Once()
	f.executor.On("ExecutePass", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", cause).Once()
	f.jobs.On("SetStatus", mock.Anything, jobID, models.JobStatusFailed, cause.Error()).Return(nil).Once()

	var notified messaging.NotificationPayload
	f.notifier.On("Notify", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			notified = args.Get(1).(messaging.NotificationPayload)
		}).
		Return(nil).Once()

	err := f.handler.Handle(context.Background(), payload)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, messaging.NotificationStatusError, notified.Status)
	assert.Contains(t, notified.ErrorDetails, "all providers exhausted")
}

func TestHandle_CompletedJobReplaysStoredDraft(t *testing.T) {
	f := newHandlerFixture(t)
	jobID := uuid.New()
	payload := newTaskPayload(jobID.String())

	f.jobs.On("GetByID", mock.Anything, jobID).Return(&models.GenerationJob{
		ID:                jobID,
		UserID:            "user-7",
		Status:            models.JobStatusCompleted,
		TotalSections:     4,
		CompletedSections: 4,
	}, nil).Once()
	f.sections.On("AssembleDraft", mock.Anything, jobID).Return("stored draft", nil).Once()

	var notified messaging.NotificationPayload
	f.notifier.On("Notify", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			notified = args.Get(1).(messaging.NotificationPayload)
		}).
		Return(nil).Once()

	err := f.handler.Handle(context.Background(), payload)

	assert.NoError(t, err)
	assert.Equal(t, "stored draft", notified.DraftText)
	f.executor.AssertNotCalled(t, "ExecutePass",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_InvalidTaskIDFailsFast(t *testing.T) {
	f := newHandlerFixture(t)
	payload := newTaskPayload("not-a-uuid")

	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Once()

	err := f.handler.Handle(context.Background(), payload)

	assert.Error(t, err)
	f.executor.AssertNotCalled(t, "ExecutePass",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
