package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/chatseal/internal/conversation/domain"
	"github.com/allisson/chatseal/internal/metrics"
)

const metricsDomain = "admin_read"

// adminReadUseCaseWithMetrics decorates AdminReadUseCase with metrics instrumentation.
type adminReadUseCaseWithMetrics struct {
	next    AdminReadUseCase
	metrics metrics.BusinessMetrics
}

// NewAdminReadUseCaseWithMetrics wraps an AdminReadUseCase with metrics recording.
func NewAdminReadUseCaseWithMetrics(useCase AdminReadUseCase, m metrics.BusinessMetrics) AdminReadUseCase {
	return &adminReadUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *adminReadUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	a.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// ListUserConversations records metrics for admin conversation listings.
func (a *adminReadUseCaseWithMetrics) ListUserConversations(
	ctx context.Context,
	adminID, userID uuid.UUID,
	offset, limit int,
) ([]*domain.ConversationView, error) {
	start := time.Now()
	views, err := a.next.ListUserConversations(ctx, adminID, userID, offset, limit)
	a.record(ctx, "list_conversations", start, err)
	return views, err
}

// ListConversationMessages records metrics for admin message listings.
func (a *adminReadUseCaseWithMetrics) ListConversationMessages(
	ctx context.Context,
	adminID, conversationID uuid.UUID,
	offset, limit int,
) ([]*domain.MessageView, error) {
	start := time.Now()
	views, err := a.next.ListConversationMessages(ctx, adminID, conversationID, offset, limit)
	a.record(ctx, "list_messages", start, err)
	return views, err
}
