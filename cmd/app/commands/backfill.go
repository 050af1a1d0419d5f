package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	backfillDomain "github.com/allisson/chatseal/internal/backfill/domain"
	backfillUseCase "github.com/allisson/chatseal/internal/backfill/usecase"
)

// RunBackfillEncryption encrypts every conversation and message row still stored
// in plaintext and prints the run report in text or JSON format.
// The run continues past row failures; they are reported and the command
// returns an error so that automation can retry.
//
// Requirements: Database must be migrated and the master secret configured.
func RunBackfillEncryption(
	ctx context.Context,
	useCase backfillUseCase.BackfillUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("starting encryption backfill")

	report, err := useCase.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run encryption backfill: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, report); err != nil {
			return err
		}
	} else {
		outputBackfillText(writer, report)
	}

	logger.Info("encryption backfill completed",
		slog.Int("owners", report.Owners),
		slog.Int("conversations_encrypted", report.ConversationsEncrypted),
		slog.Int("messages_encrypted", report.MessagesEncrypted),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", len(report.Failures)),
	)

	if len(report.Failures) > 0 {
		return fmt.Errorf("encryption backfill finished with %d failed row(s)", len(report.Failures))
	}
	return nil
}

func outputBackfillText(writer io.Writer, report *backfillDomain.Report) {
	_, _ = fmt.Fprintf(writer, "Owners processed: %d\n", report.Owners)
	_, _ = fmt.Fprintf(writer, "Conversations encrypted: %d\n", report.ConversationsEncrypted)
	_, _ = fmt.Fprintf(writer, "Messages encrypted: %d\n", report.MessagesEncrypted)
	_, _ = fmt.Fprintf(writer, "Rows skipped: %d\n", report.Skipped)
	_, _ = fmt.Fprintf(writer, "Rows failed: %d\n", len(report.Failures))
	for _, failure := range report.Failures {
		_, _ = fmt.Fprintf(writer, "  %v\n", failure)
	}
}
