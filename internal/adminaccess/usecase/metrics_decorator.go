package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	adminAccessDomain "github.com/allisson/chatseal/internal/adminaccess/domain"
	"github.com/allisson/chatseal/internal/metrics"
)

const metricsDomain = "admin_access"

// adminAccessUseCaseWithMetrics decorates AdminAccessUseCase with metrics instrumentation.
type adminAccessUseCaseWithMetrics struct {
	next    AdminAccessUseCase
	metrics metrics.BusinessMetrics
}

// NewAdminAccessUseCaseWithMetrics wraps an AdminAccessUseCase with metrics recording.
func NewAdminAccessUseCaseWithMetrics(useCase AdminAccessUseCase, m metrics.BusinessMetrics) AdminAccessUseCase {
	return &adminAccessUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *adminAccessUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	a.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// RequestAccess records metrics for access request operations.
func (a *adminAccessUseCaseWithMetrics) RequestAccess(
	ctx context.Context,
	input *adminAccessDomain.RequestAccessInput,
) (*adminAccessDomain.RequestAccessOutput, error) {
	start := time.Now()
	output, err := a.next.RequestAccess(ctx, input)
	a.record(ctx, "request", start, err)
	return output, err
}

// Authorize records metrics for token redemption.
func (a *adminAccessUseCaseWithMetrics) Authorize(
	ctx context.Context,
	plainToken string,
) (*adminAccessDomain.AuthorizeOutput, error) {
	start := time.Now()
	output, err := a.next.Authorize(ctx, plainToken)
	a.record(ctx, "authorize", start, err)
	return output, err
}

// CheckAuthorization records metrics for authorization checks.
func (a *adminAccessUseCaseWithMetrics) CheckAuthorization(ctx context.Context, userID uuid.UUID) (bool, error) {
	start := time.Now()
	ok, err := a.next.CheckAuthorization(ctx, userID)
	a.record(ctx, "check", start, err)
	return ok, err
}

// Revoke records metrics for revocations.
func (a *adminAccessUseCaseWithMetrics) Revoke(ctx context.Context, userID uuid.UUID) error {
	start := time.Now()
	err := a.next.Revoke(ctx, userID)
	a.record(ctx, "revoke", start, err)
	return err
}

// Status records metrics for status lookups.
func (a *adminAccessUseCaseWithMetrics) Status(
	ctx context.Context,
	userID uuid.UUID,
) (*adminAccessDomain.AccessStatus, error) {
	start := time.Now()
	status, err := a.next.Status(ctx, userID)
	a.record(ctx, "status", start, err)
	return status, err
}

// SweepExpired records metrics for the expiry sweep.
func (a *adminAccessUseCaseWithMetrics) SweepExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := a.next.SweepExpired(ctx)
	a.record(ctx, "sweep", start, err)
	return count, err
}
