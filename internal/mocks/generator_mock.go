package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"article-server/internal/pipeline"
	"article-server/internal/validation"
)

// MockSectionGenerator is a mock type for the pipeline.SectionGenerator type
type MockSectionGenerator struct {
	mock.Mock
}

func (_m *MockSectionGenerator) GenerateWithRetry(ctx context.Context, req validation.GenerateRequest) (string, error) {
	ret := _m.Called(ctx, req)
	return ret.String(0), ret.Error(1)
}

// NewMockSectionGenerator creates a new instance of MockSectionGenerator.
func NewMockSectionGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockSectionGenerator {
	m := &MockSectionGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ pipeline.SectionGenerator = (*MockSectionGenerator)(nil)
