// Package usecase implements the admin access authorization workflow.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	adminAccessDomain "github.com/allisson/chatseal/internal/adminaccess/domain"
	outboxDomain "github.com/allisson/chatseal/internal/outbox/domain"
	userDomain "github.com/allisson/chatseal/internal/user/domain"
)

// UserRepository defines the user persistence operations the workflow needs.
// Implementations must support transaction-aware operations via context propagation.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
	RecordAccessRequest(ctx context.Context, id uuid.UUID, requestedAt time.Time, reason string) error
	GrantAdminAccess(ctx context.Context, id uuid.UUID, authorizedAt, expiresAt time.Time) error
	RevokeAdminAccess(ctx context.Context, id uuid.UUID, revokedAt time.Time) error
	ClearExpiredAdminAccess(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	ClearAllExpiredAdminAccess(ctx context.Context, now time.Time) (int64, error)
}

// AdminAuthTokenRepository defines persistence operations for authorization tokens.
type AdminAuthTokenRepository interface {
	// Create stores a new token.
	Create(ctx context.Context, token *adminAccessDomain.AdminAuthToken) error

	// GetByTokenHash retrieves a token by hash. Returns ErrTokenNotFound if not found.
	GetByTokenHash(ctx context.Context, tokenHash string) (*adminAccessDomain.AdminAuthToken, error)

	// GetLatestByUserID returns the most recent token issued for a user.
	// Returns ErrTokenNotFound if none exists.
	GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*adminAccessDomain.AdminAuthToken, error)

	// MarkUsed claims a token. It only succeeds for an unused token and
	// returns false when another caller claimed it first.
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error)

	// SupersedeOutstanding marks every unused token of a user as used, except
	// keepID when it is not uuid.Nil. Returns the number of tokens changed.
	SupersedeOutstanding(ctx context.Context, userID, keepID uuid.UUID, usedAt time.Time) (int64, error)
}

// OutboxEventRepository enqueues events delivered asynchronously by the outbox worker.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// AdminAccessUseCase defines the admin access authorization workflow.
//
// State per user: none, requested, then one of authorized, expired or
// revoked. Grants are time-boxed and enforced lazily: CheckAuthorization
// clears an expired grant the first time it sees it.
type AdminAccessUseCase interface {
	// RequestAccess issues a single-use authorization token and queues the
	// authorization email for the user. Email delivery never affects the result.
	RequestAccess(
		ctx context.Context,
		input *adminAccessDomain.RequestAccessInput,
	) (*adminAccessDomain.RequestAccessOutput, error)

	// Authorize redeems a plain token and grants access for the requested duration.
	Authorize(ctx context.Context, plainToken string) (*adminAccessDomain.AuthorizeOutput, error)

	// CheckAuthorization reports whether admins may currently read the user's content.
	CheckAuthorization(ctx context.Context, userID uuid.UUID) (bool, error)

	// Revoke withdraws any grant or pending request. Idempotent.
	Revoke(ctx context.Context, userID uuid.UUID) error

	// Status returns the current access state of a user.
	Status(ctx context.Context, userID uuid.UUID) (*adminAccessDomain.AccessStatus, error)

	// SweepExpired clears every expired grant and returns how many were cleared.
	SweepExpired(ctx context.Context) (int64, error)
}
