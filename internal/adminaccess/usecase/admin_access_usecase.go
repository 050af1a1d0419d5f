package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	adminAccessDomain "github.com/allisson/chatseal/internal/adminaccess/domain"
	adminAccessService "github.com/allisson/chatseal/internal/adminaccess/service"
	"github.com/allisson/chatseal/internal/database"
	outboxDomain "github.com/allisson/chatseal/internal/outbox/domain"
	userDomain "github.com/allisson/chatseal/internal/user/domain"
	customValidation "github.com/allisson/chatseal/internal/validation"
)

const (
	// authorizePath is appended to the public base URL to build the link sent to users.
	authorizePath = "/admin-access/authorize"

	defaultMaxDurationHours = 168
)

// Config holds admin access use case configuration.
type Config struct {
	// PublicBaseURL is the externally reachable URL authorization links point to.
	PublicBaseURL string
	// MaxDurationHours caps the access window an admin may request.
	MaxDurationHours int
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// adminAccessUseCase implements AdminAccessUseCase.
type adminAccessUseCase struct {
	config       Config
	txManager    database.TxManager
	userRepo     UserRepository
	tokenRepo    AdminAuthTokenRepository
	outboxRepo   OutboxEventRepository
	tokenService adminAccessService.TokenService
	logger       *slog.Logger
}

// NewAdminAccessUseCase creates a new AdminAccessUseCase with the provided dependencies.
func NewAdminAccessUseCase(
	config Config,
	txManager database.TxManager,
	userRepo UserRepository,
	tokenRepo AdminAuthTokenRepository,
	outboxRepo OutboxEventRepository,
	tokenService adminAccessService.TokenService,
	logger *slog.Logger,
) AdminAccessUseCase {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.MaxDurationHours <= 0 {
		config.MaxDurationHours = defaultMaxDurationHours
	}
	return &adminAccessUseCase{
		config:       config,
		txManager:    txManager,
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		outboxRepo:   outboxRepo,
		tokenService: tokenService,
		logger:       logger,
	}
}

func (a *adminAccessUseCase) now() time.Time {
	return a.config.Now().UTC()
}

// RequestAccess issues a new authorization token for the user.
//
// This method:
// 1. Validates the reason and the requested duration
// 2. Loads the user and checks an email address is on file
// 3. Generates a 256-bit token, storing only its hash
// 4. In one transaction: supersedes outstanding tokens, stores the new token,
// stamps the request on the user and enqueues the authorization email
//
// The email is delivered by the outbox worker. A failed delivery is retried
// and logged there and never rolls back the request.
func (a *adminAccessUseCase) RequestAccess(
	ctx context.Context,
	input *adminAccessDomain.RequestAccessInput,
) (*adminAccessDomain.RequestAccessOutput, error) {
	if err := a.validateRequestAccessInput(input); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	user, err := a.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if !user.HasContactAddress() {
		return nil, adminAccessDomain.ErrNoContactAddress
	}

	plainToken, tokenHash, err := a.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := a.now()
	token := &adminAccessDomain.AdminAuthToken{
		ID:            uuid.Must(uuid.NewV7()),
		UserID:        user.ID,
		AdminID:       input.AdminID,
		TokenHash:     tokenHash,
		Reason:        input.Reason,
		DurationHours: input.DurationHours,
		CreatedAt:     now,
		ExpiresAt:     now.Add(time.Duration(input.DurationHours) * time.Hour),
	}

	link := a.authorizationLink(plainToken)
	event, err := outboxDomain.NewAdminAccessRequestedEvent(outboxDomain.AdminAccessRequestedPayload{
		To:            user.Email,
		Link:          link,
		Reason:        input.Reason,
		DurationHours: input.DurationHours,
	}, now)
	if err != nil {
		return nil, err
	}

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := a.tokenRepo.SupersedeOutstanding(ctx, user.ID, uuid.Nil, now); err != nil {
			return err
		}
		if err := a.tokenRepo.Create(ctx, token); err != nil {
			return err
		}
		if err := a.userRepo.RecordAccessRequest(ctx, user.ID, now, input.Reason); err != nil {
			return err
		}
		return a.outboxRepo.Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("admin access requested",
		slog.String("user_id", user.ID.String()),
		slog.String("admin_id", input.AdminID.String()),
		slog.String("token_id", token.ID.String()),
		slog.Int("duration_hours", input.DurationHours),
	)

	return &adminAccessDomain.RequestAccessOutput{
		TokenID:           token.ID,
		PlainToken:        plainToken,
		AuthorizationLink: link,
		ExpiresAt:         token.ExpiresAt,
	}, nil
}

// Authorize redeems a plain token.
//
// Security Notes:
//   - Unknown and malformed tokens both return ErrInvalidToken
//   - A used or superseded token returns ErrTokenAlreadyUsed, checked before expiry
//   - The token is claimed with a conditional update so concurrent redemptions
//     grant access at most once
func (a *adminAccessUseCase) Authorize(
	ctx context.Context,
	plainToken string,
) (*adminAccessDomain.AuthorizeOutput, error) {
	if err := validation.Validate(plainToken, validation.Required, customValidation.AuthorizationToken); err != nil {
		return nil, adminAccessDomain.ErrInvalidToken
	}

	token, err := a.tokenRepo.GetByTokenHash(ctx, a.tokenService.HashToken(plainToken))
	if err != nil {
		if errors.Is(err, adminAccessDomain.ErrTokenNotFound) {
			return nil, adminAccessDomain.ErrInvalidToken
		}
		return nil, err
	}

	if token.Used {
		return nil, adminAccessDomain.ErrTokenAlreadyUsed
	}

	now := a.now()
	if token.IsExpired(now) {
		return nil, adminAccessDomain.ErrExpiredToken
	}

	expiresAt := now.Add(time.Duration(token.DurationHours) * time.Hour)

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		claimed, err := a.tokenRepo.MarkUsed(ctx, token.ID, now)
		if err != nil {
			return err
		}
		if !claimed {
			return adminAccessDomain.ErrTokenAlreadyUsed
		}
		if err := a.userRepo.GrantAdminAccess(ctx, token.UserID, now, expiresAt); err != nil {
			return err
		}
		_, err = a.tokenRepo.SupersedeOutstanding(ctx, token.UserID, token.ID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("admin access authorized",
		slog.String("user_id", token.UserID.String()),
		slog.String("admin_id", token.AdminID.String()),
		slog.String("token_id", token.ID.String()),
		slog.Time("expires_at", expiresAt),
	)

	return &adminAccessDomain.AuthorizeOutput{
		UserID:    token.UserID,
		AdminID:   token.AdminID,
		ExpiresAt: expiresAt,
	}, nil
}

// CheckAuthorization reports whether the user's grant is in force.
//
// A grant that is flagged but expired (or has no expiry) is cleared with a
// conditional update. Two concurrent checks may both try to clear it; both
// return false.
func (a *adminAccessUseCase) CheckAuthorization(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := a.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	now := a.now()
	if user.AdminAccessActive(now) {
		return true, nil
	}

	if user.AdminAccessExpired(now) {
		if err := a.clearExpired(ctx, user, now); err != nil {
			return false, err
		}
	}

	return false, nil
}

// Revoke clears the grant and supersedes any pending token.
func (a *adminAccessUseCase) Revoke(ctx context.Context, userID uuid.UUID) error {
	now := a.now()

	err := a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.userRepo.RevokeAdminAccess(ctx, userID, now); err != nil {
			return err
		}
		_, err := a.tokenRepo.SupersedeOutstanding(ctx, userID, uuid.Nil, now)
		return err
	})
	if err != nil {
		return err
	}

	a.logger.Info("admin access revoked", slog.String("user_id", userID.String()))
	return nil
}

// Status returns the user's access state, clearing an expired grant first.
func (a *adminAccessUseCase) Status(
	ctx context.Context,
	userID uuid.UUID,
) (*adminAccessDomain.AccessStatus, error) {
	user, err := a.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := a.now()
	if user.AdminAccessExpired(now) {
		if err := a.clearExpired(ctx, user, now); err != nil {
			return nil, err
		}
		user.AdminAccessAuthorized = false
		user.AdminAccessExpiresAt = nil
	}

	latest, err := a.tokenRepo.GetLatestByUserID(ctx, userID)
	if err != nil && !errors.Is(err, adminAccessDomain.ErrTokenNotFound) {
		return nil, err
	}

	return &adminAccessDomain.AccessStatus{
		UserID:       user.ID,
		State:        accessState(user, latest, now),
		Reason:       user.AdminAccessReason,
		RequestedAt:  user.AdminAccessRequestedAt,
		AuthorizedAt: user.AdminAccessAuthorizedAt,
		ExpiresAt:    user.AdminAccessExpiresAt,
	}, nil
}

// SweepExpired clears every expired grant. Lazy expiry in CheckAuthorization
// does not depend on it.
func (a *adminAccessUseCase) SweepExpired(ctx context.Context) (int64, error) {
	count, err := a.userRepo.ClearAllExpiredAdminAccess(ctx, a.now())
	if err != nil {
		return 0, err
	}

	if count > 0 {
		a.logger.Info("expired admin access cleared", slog.Int64("count", count))
	}
	return count, nil
}

func (a *adminAccessUseCase) clearExpired(ctx context.Context, user *userDomain.User, now time.Time) error {
	cleared, err := a.userRepo.ClearExpiredAdminAccess(ctx, user.ID, now)
	if err != nil {
		return err
	}
	if cleared {
		a.logger.Info("admin access expired", slog.String("user_id", user.ID.String()))
	}
	return nil
}

func (a *adminAccessUseCase) validateRequestAccessInput(input *adminAccessDomain.RequestAccessInput) error {
	return validation.ValidateStruct(input,
		validation.Field(&input.AdminID, validation.By(notNilUUID)),
		validation.Field(&input.UserID, validation.By(notNilUUID)),
		validation.Field(&input.Reason,
			validation.Required,
			customValidation.NotBlank,
			customValidation.RuneLength(3, 500),
		),
		validation.Field(&input.DurationHours,
			validation.Required,
			validation.Min(1),
			validation.Max(a.config.MaxDurationHours),
		),
	)
}

func (a *adminAccessUseCase) authorizationLink(plainToken string) string {
	return strings.TrimRight(a.config.PublicBaseURL, "/") + authorizePath + "?token=" + url.QueryEscape(plainToken)
}

func notNilUUID(value interface{}) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return validation.NewError("validation_uuid_required", "cannot be blank")
	}
	return nil
}

// accessState derives the state machine position from the user row and the
// most recent token.
func accessState(
	user *userDomain.User,
	latest *adminAccessDomain.AdminAuthToken,
	now time.Time,
) adminAccessDomain.AccessState {
	switch {
	case user.AdminAccessActive(now):
		return adminAccessDomain.AccessStateAuthorized
	case latest != nil && !latest.Used && !latest.IsExpired(now):
		return adminAccessDomain.AccessStateRequested
	case user.AdminAccessRevokedAt != nil:
		return adminAccessDomain.AccessStateRevoked
	case user.AdminAccessAuthorizedAt != nil || user.AdminAccessRequestedAt != nil:
		return adminAccessDomain.AccessStateExpired
	default:
		return adminAccessDomain.AccessStateNone
	}
}
