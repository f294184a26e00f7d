// Package mocks holds testify mocks for the worker's interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"article-server/internal/ai"
	"article-server/internal/validation"
)

// MockProviderClient is a mock type for the ai.ProviderClient type
type MockProviderClient struct {
	mock.Mock
}

// GenerateText provides a mock function with given fields: ctx, prompt, params
func (_m *MockProviderClient) GenerateText(ctx context.Context, prompt ai.Prompt, params ai.GenerationParams) (string, ai.Usage, error) {
	ret := _m.Called(ctx, prompt, params)

	var r0 string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}

	var r1 ai.Usage
	if ret.Get(1) != nil {
		r1 = ret.Get(1).(ai.Usage)
	}

	return r0, r1, ret.Error(2)
}

// Name provides a mock function with no fields
func (_m *MockProviderClient) Name() string {
	ret := _m.Called()
	return ret.String(0)
}

// NewMockProviderClient creates a new instance of MockProviderClient.
// The first argument is typically a *testing.T value.
func NewMockProviderClient(t interface {
	mock.TestingT
	Helper()
}) *MockProviderClient {
	m := &MockProviderClient{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ ai.ProviderClient = (*MockProviderClient)(nil)

// MockCaller is a mock type for the validation.Caller type
type MockCaller struct {
	mock.Mock
}

// CallWithFallback provides a mock function with given fields: ctx, settings, prompt, params
func (_m *MockCaller) CallWithFallback(ctx context.Context, settings ai.Settings, prompt ai.Prompt, params ai.GenerationParams) (string, ai.Usage, error) {
	ret := _m.Called(ctx, settings, prompt, params)

	var r0 string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}

	var r1 ai.Usage
	if ret.Get(1) != nil {
		r1 = ret.Get(1).(ai.Usage)
	}

	return r0, r1, ret.Error(2)
}

// NewMockCaller creates a new instance of MockCaller.
func NewMockCaller(t interface {
	mock.TestingT
	Helper()
}) *MockCaller {
	m := &MockCaller{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ validation.Caller = (*MockCaller)(nil)
