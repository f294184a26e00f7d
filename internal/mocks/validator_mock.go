package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"article-server/internal/models"
	"article-server/internal/validation"
)

// MockValidator is a mock type for the validation.Validator type
type MockValidator struct {
	mock.Mock
}

// Validate provides a mock function with given fields: ctx, text, vctx, passNumber
func (_m *MockValidator) Validate(ctx context.Context, text string, vctx validation.Context, passNumber int) (*models.ValidationResult, error) {
	ret := _m.Called(ctx, text, vctx, passNumber)

	var r0 *models.ValidationResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ValidationResult)
	}

	return r0, ret.Error(1)
}

// NewMockValidator creates a new instance of MockValidator.
func NewMockValidator(t interface {
	mock.TestingT
	Helper()
}) *MockValidator {
	m := &MockValidator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ validation.Validator = (*MockValidator)(nil)
