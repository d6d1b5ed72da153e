package approval_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/mfakit/pkg/account"
	"github.com/dmitrymomot/mfakit/pkg/credential"
)

type MockPrompter struct {
	mock.Mock
}

func (m *MockPrompter) ConfirmCode(ctx context.Context, acc *account.Account, code string, remaining int) (bool, error) {
	args := m.Called(ctx, acc, code, remaining)
	return args.Bool(0), args.Error(1)
}

func (m *MockPrompter) PromptPIN(ctx context.Context, acc *account.Account) (string, error) {
	args := m.Called(ctx, acc)
	return args.String(0), args.Error(1)
}

func (m *MockPrompter) PromptPattern(ctx context.Context, acc *account.Account, gridSize int) ([]credential.Point, error) {
	args := m.Called(ctx, acc, gridSize)
	points, _ := args.Get(0).([]credential.Point)
	return points, args.Error(1)
}

func (m *MockPrompter) PromptPasskey(ctx context.Context, acc *account.Account) (string, error) {
	args := m.Called(ctx, acc)
	return args.String(0), args.Error(1)
}

type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) Authenticate(ctx context.Context, method account.Method, reason string) error {
	return m.Called(ctx, method, reason).Error(0)
}
