package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	adminAccessUseCase "github.com/allisson/chatseal/internal/adminaccess/usecase"
)

// RunSweepAdminAccess clears every admin access grant whose window has passed.
// Reads already expire grants lazily; the sweep keeps stored state tidy for
// users nobody reads.
//
// Requirements: Database must be migrated and accessible.
func RunSweepAdminAccess(
	ctx context.Context,
	useCase adminAccessUseCase.AdminAccessUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("sweeping expired admin access grants")

	count, err := useCase.SweepExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to sweep expired admin access: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{"cleared": count}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Cleared %d expired admin access grant(s)\n", count)
	}

	logger.Info("sweep completed", slog.Int64("cleared", count))
	return nil
}

// RunRevokeAdminAccess withdraws the admin access grant or pending request of a user.
// Revoking a user without access succeeds.
func RunRevokeAdminAccess(
	ctx context.Context,
	useCase adminAccessUseCase.AdminAccessUseCase,
	logger *slog.Logger,
	writer io.Writer,
	userIDStr string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}

	if err := useCase.Revoke(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke admin access: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"user_id":    userID.String(),
			"revoked_at": time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Admin access revoked for user %s\n", userID)
	}

	logger.Info("admin access revoked", slog.String("user_id", userID.String()))
	return nil
}
