package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"article-server/internal/mocks"
	"article-server/internal/models"
	"article-server/internal/pipeline"
	"article-server/internal/validation"
)

func newTestBrief() *models.ContentBrief {
	return &models.ContentBrief{
		Title:         "Smallholder Goat Farming",
		CentralEntity: "goat farming",
		Language:      "en",
		Outline: []models.BriefSection{
			{Key: "alpha", Heading: "What is goat farming", Category: models.CategoryRoot},
			{Key: "beta", Heading: "Breeds and selection", Category: models.CategoryUnique},
			{Key: "gamma", Heading: "Daily routines", Category: models.CategoryCommon},
		},
	}
}

func newTestJob() *models.GenerationJob {
	return &models.GenerationJob{
		ID:         uuid.New(),
		UserID:     "user-1",
		Title:      "Smallholder Goat Farming",
		Status:     models.JobStatusGenerating,
		PassNumber: 1,
	}
}

func testPassOptions() pipeline.PassOptions {
	return pipeline.PassOptions{
		MaxSectionsOverride: 3,
		ValidationMode:      models.ValidationModeSoft,
		MaxRetries:          1,
		SectionDelay:        time.Millisecond,
	}
}

func TestExecutePass_GeneratesAllSectionsInRankedOrder(t *testing.T) {
	jobs := mocks.NewMockJobRepository(t)
	sections := mocks.NewMockSectionRepository(t)
	gate := mocks.NewMockSectionGenerator(t)
	orch := pipeline.NewOrchestrator(jobs, sections, gate, zap.NewNop())

	job := newTestJob()
	sections.On("GetSections", mock.Anything, job.ID).Return(nil, nil).Once()

	var requests []validation.GenerateRequest
	gate.On("GenerateWithRetry", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			requests = append(requests, args.Get(1).(validation.GenerateRequest))
		}).
		Return("Section body text.", nil).Times(3)

	var upserted []string
	sections.On("UpsertSection", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			rec := args.Get(1).(*models.SectionRecord)
			upserted = append(upserted, rec.Key)
			assert.Equal(t, models.SectionStatusCompleted, rec.Status)
		}).
		Return(nil).Times(3)
	jobs.On("UpdateProgress", mock.Anything, job.ID, mock.Anything).Return(nil)
	sections.On("AssembleDraft", mock.Anything, job.ID).Return("the full draft", nil).Once()

	var completions []int
	onComplete := func(key, heading string, completed, total int) {
		completions = append(completions, completed)
		assert.Equal(t, 3, total)
	}

	draft, err := orch.ExecutePass(context.Background(), job, newTestBrief(), models.BusinessInfo{}, onComplete, nil, testPassOptions())

	assert.NoError(t, err)
	assert.Equal(t, "the full draft", draft)
	// Sections run in attribute-rank order.
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, upserted)
	assert.Equal(t, []int{1, 2, 3}, completions)

	// The first section has no discourse context; later ones chain off the
	// previous text.
	assert.Nil(t, requests[0].Discourse)
	assert.NotNil(t, requests[1].Discourse)
	assert.Equal(t, "Section body text.", requests[1].Discourse.PreviousParagraph)
}

func TestExecutePass_ResumesFromPersistedSections(t *testing.T) {
	jobs := mocks.NewMockJobRepository(t)
	sections := mocks.NewMockSectionRepository(t)
	gate := mocks.NewMockSectionGenerator(t)
	orch := pipeline.NewOrchestrator(jobs, sections, gate, zap.NewNop())

	job := newTestJob()
	existing := []models.SectionRecord{
		{
			JobID:  job.ID,
			Key:    "alpha",
			Status: models.SectionStatusCompleted,
			Text:   "Goat farming requires steady water.",
		},
	}
	sections.On("GetSections", mock.Anything, job.ID).Return(existing, nil).Once()

	var requests []validation.GenerateRequest
	gate.On("GenerateWithRetry", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			requests = append(requests, args.Get(1).(validation.GenerateRequest))
		}).
		Return("Fresh text.", nil).Times(2)

	sections.On("UpsertSection", mock.Anything, mock.Anything).Return(nil).Times(2)
	jobs.On("UpdateProgress", mock.Anything, job.ID, mock.Anything).Return(nil)
	sections.On("AssembleDraft", mock.Anything, job.ID).Return("resumed draft", nil).Once()

	var completions []int
	onComplete := func(key, heading string, completed, total int) {
		completions = append(completions, completed)
	}

	draft, err := orch.ExecutePass(context.Background(), job, newTestBrief(), models.BusinessInfo{}, onComplete, nil, testPassOptions())

	assert.NoError(t, err)
	assert.Equal(t, "resumed draft", draft)
	// Only beta and gamma are generated; the persisted count seeds progress.
	assert.Equal(t, []int{2, 3}, completions)
	assert.Equal(t, "beta", requests[0].Section.Key)
	// The stored alpha text seeds the discourse chain for beta.
	assert.NotNil(t, requests[0].Discourse)
	assert.Equal(t, "steady water", requests[0].Discourse.LastObject)
}

func TestExecutePass_AbortStopsAtSectionBoundary(t *testing.T) {
	jobs := mocks.NewMockJobRepository(t)
	sections := mocks.NewMockSectionRepository(t)
	gate := mocks.NewMockSectionGenerator(t)
	orch := pipeline.NewOrchestrator(jobs, sections, gate, zap.NewNop())

	job := newTestJob()
	sections.On("GetSections", mock.Anything, job.ID).Return(nil, nil).Once()

	calls := 0
	shouldAbort := func() bool {
		calls++
		return calls > 1 // abort before the second section
	}

	gate.On("GenerateWithRetry", mock.Anything, mock.Anything).Return("First section.", nil).Once()
	sections.On("UpsertSection", mock.Anything, mock.Anything).Return(nil).Once()
	jobs.On("UpdateProgress", mock.Anything, job.ID, mock.Anything).Return(nil).Once()

	_, err := orch.ExecutePass(context.Background(), job, newTestBrief(), models.BusinessInfo{}, nil, shouldAbort, testPassOptions())

	assert.ErrorIs(t, err, models.ErrPassAborted)
	gate.AssertNumberOfCalls(t, "GenerateWithRetry", 1)
}

func TestExecutePass_FailedSectionAbortsPass(t *testing.T) {
	jobs := mocks.NewMockJobRepository(t)
	sections := mocks.NewMockSectionRepository(t)
	gate := mocks.NewMockSectionGenerator(t)
	orch := pipeline.NewOrchestrator(jobs, sections, gate, zap.NewNop())

	job := newTestJob()
	sections.On("GetSections", mock.Anything, job.ID).Return(nil, nil).Once()

	failure := &validation.ValidationFailedError{SectionHeading: "What is goat farming", Attempts: 1, Summary: "rejected"}
	gate.On("GenerateWithRetry", mock.Anything, mock.Anything).Return("", failure).Once()

	_, err := orch.ExecutePass(context.Background(), job, newTestBrief(), models.BusinessInfo{}, nil, nil, testPassOptions())

	var failedErr *validation.ValidationFailedError
	assert.ErrorAs(t, err, &failedErr)
	// Nothing was persisted for the rejected section.
	sections.AssertNotCalled(t, "UpsertSection", mock.Anything, mock.Anything)
}

func TestExecutePass_GeneratedHeadingIsParsedFromText(t *testing.T) {
	jobs := mocks.NewMockJobRepository(t)
	sections := mocks.NewMockSectionRepository(t)
	gate := mocks.NewMockSectionGenerator(t)
	orch := pipeline.NewOrchestrator(jobs, sections, gate, zap.NewNop())

	brief := &models.ContentBrief{
		Title:         "Smallholder Goat Farming",
		CentralEntity: "goat farming",
		Language:      "en",
		Outline:       []models.BriefSection{{Key: "open", Category: models.CategoryRoot}},
	}

	job := newTestJob()
	sections.On("GetSections", mock.Anything, job.ID).Return(nil, nil).Once()
	gate.On("GenerateWithRetry", mock.Anything, mock.Anything).
		Return("## Getting Started with Goats\n\nBody text here.", nil).Once()

	var heading string
	sections.On("UpsertSection", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			heading = args.Get(1).(*models.SectionRecord).Heading
		}).
		Return(nil).Once()
	jobs.On("UpdateProgress", mock.Anything, job.ID, mock.Anything).Return(nil)
	sections.On("AssembleDraft", mock.Anything, job.ID).Return("draft", nil).Once()

	opts := testPassOptions()
	opts.MaxSectionsOverride = 1

	_, err := orch.ExecutePass(context.Background(), job, brief, models.BusinessInfo{}, nil, nil, opts)

	assert.NoError(t, err)
	assert.Equal(t, "Getting Started with Goats", heading)
}
