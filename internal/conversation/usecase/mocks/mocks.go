// Package mocks provides mock implementations of the conversation use cases for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/chatseal/internal/conversation/domain"
)

// MockAdminReadUseCase is a mock implementation of AdminReadUseCase for testing.
type MockAdminReadUseCase struct {
	mock.Mock
}

// ListUserConversations mocks the ListUserConversations method.
func (m *MockAdminReadUseCase) ListUserConversations(
	ctx context.Context,
	adminID, userID uuid.UUID,
	offset, limit int,
) ([]*domain.ConversationView, error) {
	args := m.Called(ctx, adminID, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ConversationView), args.Error(1)
}

// ListConversationMessages mocks the ListConversationMessages method.
func (m *MockAdminReadUseCase) ListConversationMessages(
	ctx context.Context,
	adminID, conversationID uuid.UUID,
	offset, limit int,
) ([]*domain.MessageView, error) {
	args := m.Called(ctx, adminID, conversationID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MessageView), args.Error(1)
}
