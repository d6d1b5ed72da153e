package account_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/mfakit/pkg/account"
)

type MockPushRegistrar struct {
	mock.Mock
}

func (m *MockPushRegistrar) Register(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockPushRegistrar) Unregister(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type MockCapabilityChecker struct {
	mock.Mock
}

func (m *MockCapabilityChecker) Available(ctx context.Context, method account.Method) (bool, error) {
	args := m.Called(ctx, method)
	return args.Bool(0), args.Error(1)
}
