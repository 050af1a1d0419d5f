package usecase

import (
	"context"
	"time"

	"github.com/allisson/chatseal/internal/backfill/domain"
	"github.com/allisson/chatseal/internal/metrics"
)

const metricsDomain = "backfill"

// backfillUseCaseWithMetrics decorates BackfillUseCase with metrics instrumentation.
type backfillUseCaseWithMetrics struct {
	next    BackfillUseCase
	metrics metrics.BusinessMetrics
}

// NewBackfillUseCaseWithMetrics wraps a BackfillUseCase with metrics recording.
// Row counters are taken from the report of each run.
func NewBackfillUseCaseWithMetrics(useCase BackfillUseCase, m metrics.BusinessMetrics) BackfillUseCase {
	return &backfillUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Migrate records metrics for a backfill run.
func (b *backfillUseCaseWithMetrics) Migrate(ctx context.Context) (*domain.Report, error) {
	start := time.Now()
	report, err := b.next.Migrate(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}
	b.metrics.RecordOperation(ctx, metricsDomain, "migrate", status)
	b.metrics.RecordDuration(ctx, metricsDomain, "migrate", time.Since(start), status)

	if report == nil {
		return report, err
	}

	failed := map[string]int64{}
	for _, failure := range report.Failures {
		failed[failure.Table]++
	}
	b.metrics.RecordRows(ctx, metricsDomain, domain.TableConversations, "encrypted", int64(report.ConversationsEncrypted))
	b.metrics.RecordRows(ctx, metricsDomain, domain.TableMessages, "encrypted", int64(report.MessagesEncrypted))
	b.metrics.RecordRows(ctx, metricsDomain, domain.TableConversations, "failed", failed[domain.TableConversations])
	b.metrics.RecordRows(ctx, metricsDomain, domain.TableMessages, "failed", failed[domain.TableMessages])
	b.metrics.RecordRows(ctx, metricsDomain, "all", "skipped", int64(report.Skipped))

	return report, err
}
