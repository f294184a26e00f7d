package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"article-server/internal/messaging"
)

// MockNotifier is a mock type for the messaging.Notifier type
type MockNotifier struct {
	mock.Mock
}

func (_m *MockNotifier) Notify(ctx context.Context, payload messaging.NotificationPayload) error {
	ret := _m.Called(ctx, payload)
	return ret.Error(0)
}

func (_m *MockNotifier) Progress(ctx context.Context, payload messaging.ProgressPayload) error {
	ret := _m.Called(ctx, payload)
	return ret.Error(0)
}

// NewMockNotifier creates a new instance of MockNotifier.
func NewMockNotifier(t interface {
	mock.TestingT
	Helper()
}) *MockNotifier {
	m := &MockNotifier{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ messaging.Notifier = (*MockNotifier)(nil)
