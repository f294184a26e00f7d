package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"article-server/internal/models"
	"article-server/internal/pipeline"
	"article-server/internal/worker"
)

// MockPassExecutor is a mock type for the worker.PassExecutor type
type MockPassExecutor struct {
	mock.Mock
}

func (_m *MockPassExecutor) ExecutePass(
	ctx context.Context,
	job *models.GenerationJob,
	contentBrief *models.ContentBrief,
	business models.BusinessInfo,
	onComplete pipeline.OnSectionComplete,
	shouldAbort func() bool,
	opts pipeline.PassOptions,
) (string, error) {
	ret := _m.Called(ctx, job, contentBrief, business, onComplete, shouldAbort, opts)
	return ret.String(0), ret.Error(1)
}

// NewMockPassExecutor creates a new instance of MockPassExecutor.
func NewMockPassExecutor(t interface {
	mock.TestingT
	Helper()
}) *MockPassExecutor {
	m := &MockPassExecutor{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ worker.PassExecutor = (*MockPassExecutor)(nil)
