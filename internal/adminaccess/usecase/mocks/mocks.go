// Package mocks provides mock implementations of the admin access use case for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	adminAccessDomain "github.com/allisson/chatseal/internal/adminaccess/domain"
)

// MockAdminAccessUseCase is a mock implementation of AdminAccessUseCase for testing.
type MockAdminAccessUseCase struct {
	mock.Mock
}

// RequestAccess mocks the RequestAccess method.
func (m *MockAdminAccessUseCase) RequestAccess(
	ctx context.Context,
	input *adminAccessDomain.RequestAccessInput,
) (*adminAccessDomain.RequestAccessOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adminAccessDomain.RequestAccessOutput), args.Error(1)
}

// Authorize mocks the Authorize method.
func (m *MockAdminAccessUseCase) Authorize(
	ctx context.Context,
	plainToken string,
) (*adminAccessDomain.AuthorizeOutput, error) {
	args := m.Called(ctx, plainToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adminAccessDomain.AuthorizeOutput), args.Error(1)
}

// CheckAuthorization mocks the CheckAuthorization method.
func (m *MockAdminAccessUseCase) CheckAuthorization(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// Revoke mocks the Revoke method.
func (m *MockAdminAccessUseCase) Revoke(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// Status mocks the Status method.
func (m *MockAdminAccessUseCase) Status(
	ctx context.Context,
	userID uuid.UUID,
) (*adminAccessDomain.AccessStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adminAccessDomain.AccessStatus), args.Error(1)
}

// SweepExpired mocks the SweepExpired method.
func (m *MockAdminAccessUseCase) SweepExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
