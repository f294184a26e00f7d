package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"article-server/internal/models"
	"article-server/internal/repository"
)

// MockJobRepository is a mock type for the repository.JobRepository type
type MockJobRepository struct {
	mock.Mock
}

func (_m *MockJobRepository) Create(ctx context.Context, job *models.GenerationJob) error {
	ret := _m.Called(ctx, job)
	return ret.Error(0)
}

func (_m *MockJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.GenerationJob
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.GenerationJob)
	}

	return r0, ret.Error(1)
}

func (_m *MockJobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, progress models.JobProgress) error {
	ret := _m.Called(ctx, id, progress)
	return ret.Error(0)
}

func (_m *MockJobRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.JobStatus, errorDetails string) error {
	ret := _m.Called(ctx, id, status, errorDetails)
	return ret.Error(0)
}

// NewMockJobRepository creates a new instance of MockJobRepository.
func NewMockJobRepository(t interface {
	mock.TestingT
	Helper()
}) *MockJobRepository {
	m := &MockJobRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.JobRepository = (*MockJobRepository)(nil)

// MockSectionRepository is a mock type for the repository.SectionRepository type
type MockSectionRepository struct {
	mock.Mock
}

func (_m *MockSectionRepository) GetSections(ctx context.Context, jobID uuid.UUID) ([]models.SectionRecord, error) {
	ret := _m.Called(ctx, jobID)

	var r0 []models.SectionRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.SectionRecord)
	}

	return r0, ret.Error(1)
}

func (_m *MockSectionRepository) UpsertSection(ctx context.Context, record *models.SectionRecord) error {
	ret := _m.Called(ctx, record)
	return ret.Error(0)
}

func (_m *MockSectionRepository) AssembleDraft(ctx context.Context, jobID uuid.UUID) (string, error) {
	ret := _m.Called(ctx, jobID)
	return ret.String(0), ret.Error(1)
}

// NewMockSectionRepository creates a new instance of MockSectionRepository.
func NewMockSectionRepository(t interface {
	mock.TestingT
	Helper()
}) *MockSectionRepository {
	m := &MockSectionRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.SectionRepository = (*MockSectionRepository)(nil)

// MockAbortRepository is a mock type for the repository.AbortRepository type
type MockAbortRepository struct {
	mock.Mock
}

func (_m *MockAbortRepository) RequestAbort(ctx context.Context, jobID uuid.UUID) error {
	ret := _m.Called(ctx, jobID)
	return ret.Error(0)
}

func (_m *MockAbortRepository) IsAbortRequested(ctx context.Context, jobID uuid.UUID) (bool, error) {
	ret := _m.Called(ctx, jobID)
	return ret.Bool(0), ret.Error(1)
}

func (_m *MockAbortRepository) ClearAbort(ctx context.Context, jobID uuid.UUID) error {
	ret := _m.Called(ctx, jobID)
	return ret.Error(0)
}

// NewMockAbortRepository creates a new instance of MockAbortRepository.
func NewMockAbortRepository(t interface {
	mock.TestingT
	Helper()
}) *MockAbortRepository {
	m := &MockAbortRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.AbortRepository = (*MockAbortRepository)(nil)
