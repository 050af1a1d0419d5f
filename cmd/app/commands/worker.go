package commands

import (
	"context"
	"errors"
	"log/slog"

	outboxUseCase "github.com/allisson/chatseal/internal/outbox/usecase"
)

// RunWorker runs the outbox relay that delivers authorization emails until ctx ends.
// Cancellation is a clean stop and returns nil.
func RunWorker(ctx context.Context, relay outboxUseCase.UseCase, logger *slog.Logger) error {
	logger.Info("starting outbox worker")

	err := relay.Start(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("outbox worker stopped")
	return nil
}
