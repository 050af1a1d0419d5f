package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	backfillDomain "github.com/allisson/chatseal/internal/backfill/domain"
)

type stubBackfill struct {
	report *backfillDomain.Report
	err    error
}

func (s *stubBackfill) Migrate(ctx context.Context) (*backfillDomain.Report, error) {
	return s.report, s.err
}

func TestRunBackfillEncryption(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text-output", func(t *testing.T) {
		useCase := &stubBackfill{report: &backfillDomain.Report{
			Owners:                 3,
			ConversationsEncrypted: 4,
			MessagesEncrypted:      12,
			Skipped:                2,
		}}

		var out bytes.Buffer
		err := RunBackfillEncryption(ctx, useCase, logger, &out, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Owners processed: 3")
		require.Contains(t, out.String(), "Conversations encrypted: 4")
		require.Contains(t, out.String(), "Messages encrypted: 12")
		require.Contains(t, out.String(), "Rows skipped: 2")
		require.Contains(t, out.String(), "Rows failed: 0")
	})

	t.Run("json-output", func(t *testing.T) {
		useCase := &stubBackfill{report: &backfillDomain.Report{Owners: 1, MessagesEncrypted: 5}}

		var out bytes.Buffer
		err := RunBackfillEncryption(ctx, useCase, logger, &out, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"owners": 1`)
		require.Contains(t, out.String(), `"messages_encrypted": 5`)
	})

	t.Run("row-failures", func(t *testing.T) {
		rowID := uuid.New()
		useCase := &stubBackfill{report: &backfillDomain.Report{
			Owners: 1,
			Failures: []*backfillDomain.MigrationRowError{
				{Table: backfillDomain.TableMessages, RowID: rowID, Err: errors.New("update failed")},
			},
		}}

		var out bytes.Buffer
		err := RunBackfillEncryption(ctx, useCase, logger, &out, "json")

		require.Error(t, err)
		require.Contains(t, err.Error(), "1 failed row(s)")
		require.Contains(t, out.String(), rowID.String())
		require.Contains(t, out.String(), `"error": "update failed"`)
	})

	t.Run("migrate-error", func(t *testing.T) {
		useCase := &stubBackfill{err: errors.New("connection refused")}

		err := RunBackfillEncryption(ctx, useCase, logger, &bytes.Buffer{}, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "connection refused")
	})

	t.Run("invalid-format", func(t *testing.T) {
		err := RunBackfillEncryption(ctx, &stubBackfill{}, logger, &bytes.Buffer{}, "yaml")

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid format")
	})
}
