package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubRelay struct {
	err error
}

func (s *stubRelay) Start(ctx context.Context) error {
	if s.err != nil {
		return s.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubRelay) ProcessEvents(ctx context.Context) error {
	return nil
}

func TestRunWorker(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("cancellation is a clean stop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.NoError(t, RunWorker(ctx, &stubRelay{}, logger))
	})

	t.Run("relay error is returned", func(t *testing.T) {
		relayErr := errors.New("database unavailable")

		err := RunWorker(context.Background(), &stubRelay{err: relayErr}, logger)
		assert.ErrorIs(t, err, relayErr)
	})
}
