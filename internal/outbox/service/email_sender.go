// Package service provides the delivery channels used by the outbox relay.
package service

import (
	"context"
	"log/slog"
)

// EmailSender delivers the authorization email of an admin access request.
// Implementations must never log link: it is a bearer credential.
type EmailSender interface {
	SendAuthorizationEmail(ctx context.Context, to, link, reason string, durationHours int) error
}

// LogEmailSender is the default EmailSender. It records that an email would
// have been sent and to whom, and nothing else.
type LogEmailSender struct {
	logger *slog.Logger
}

// NewLogEmailSender creates a new LogEmailSender.
func NewLogEmailSender(logger *slog.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger}
}

// SendAuthorizationEmail logs the recipient and duration.
func (s *LogEmailSender) SendAuthorizationEmail(
	ctx context.Context,
	to, link, reason string,
	durationHours int,
) error {
	s.logger.Info("authorization email queued for delivery",
		slog.String("to", to),
		slog.Int("duration_hours", durationHours),
	)
	return nil
}
