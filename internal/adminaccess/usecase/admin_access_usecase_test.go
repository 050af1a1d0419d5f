package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adminAccessDomain "github.com/allisson/chatseal/internal/adminaccess/domain"
	adminAccessService "github.com/allisson/chatseal/internal/adminaccess/service"
	apperrors "github.com/allisson/chatseal/internal/errors"
	outboxDomain "github.com/allisson/chatseal/internal/outbox/domain"
	userDomain "github.com/allisson/chatseal/internal/user/domain"
)

type testEnv struct {
	clock      *fakeClock
	users      *fakeUserRepository
	tokens     *fakeTokenRepository
	outbox     *fakeOutboxRepository
	useCase    AdminAccessUseCase
	user       *userDomain.User
	adminID    uuid.UUID
	tokenCodec adminAccessService.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	user := &userDomain.User{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      "Jane",
		Email:     "jane@example.com",
		CreatedAt: clock.now,
		UpdatedAt: clock.now,
	}
	env := &testEnv{
		clock:      clock,
		users:      newFakeUserRepository(user),
		tokens:     newFakeTokenRepository(),
		outbox:     &fakeOutboxRepository{},
		user:       user,
		adminID:    uuid.Must(uuid.NewV7()),
		tokenCodec: adminAccessService.NewTokenService(),
	}
	env.useCase = NewAdminAccessUseCase(
		Config{PublicBaseURL: "https://chat.example.com/", MaxDurationHours: 168, Now: clock.Now},
		&fakeTxManager{},
		env.users,
		env.tokens,
		env.outbox,
		env.tokenCodec,
		newTestLogger(),
	)
	return env
}

func (e *testEnv) request(t *testing.T, hours int) *adminAccessDomain.RequestAccessOutput {
	t.Helper()
	output, err := e.useCase.RequestAccess(context.Background(), &adminAccessDomain.RequestAccessInput{
		AdminID:       e.adminID,
		UserID:        e.user.ID,
		Reason:        "investigating abuse report",
		DurationHours: hours,
	})
	require.NoError(t, err)
	return output
}

func TestAdminAccessUseCase_RequestAccess(t *testing.T) {
	t.Run("Success_StoresHashAndQueuesEmail", func(t *testing.T) {
		env := newTestEnv(t)

		output := env.request(t, 24)

		assert.NotEmpty(t, output.PlainToken)
		assert.Equal(t, env.clock.now.Add(24*time.Hour), output.ExpiresAt)
		assert.True(t, strings.HasPrefix(output.AuthorizationLink,
			"https://chat.example.com/admin-access/authorize?token="))

		link, err := url.Parse(output.AuthorizationLink)
		require.NoError(t, err)
		assert.Equal(t, output.PlainToken, link.Query().Get("token"))

		stored, err := env.tokens.GetByTokenHash(context.Background(), env.tokenCodec.HashToken(output.PlainToken))
		require.NoError(t, err)
		assert.Equal(t, output.TokenID, stored.ID)
		assert.NotEqual(t, output.PlainToken, stored.TokenHash)
		assert.Equal(t, env.adminID, stored.AdminID)
		assert.Equal(t, 24, stored.DurationHours)
		assert.False(t, stored.Used)

		user := env.users.get(env.user.ID)
		require.NotNil(t, user.AdminAccessRequestedAt)
		require.NotNil(t, user.AdminAccessReason)
		assert.Equal(t, "investigating abuse report", *user.AdminAccessReason)
		assert.False(t, user.AdminAccessAuthorized)

		require.Len(t, env.outbox.events, 1)
		event := env.outbox.events[0]
		assert.Equal(t, outboxDomain.EventTypeAdminAccessRequested, event.EventType)

		var payload outboxDomain.AdminAccessRequestedPayload
		require.NoError(t, json.Unmarshal([]byte(event.Payload), &payload))
		assert.Equal(t, "jane@example.com", payload.To)
		assert.Equal(t, output.AuthorizationLink, payload.Link)
		assert.Equal(t, 24, payload.DurationHours)
	})

	t.Run("Success_SupersedesPreviousToken", func(t *testing.T) {
		env := newTestEnv(t)

		first := env.request(t, 24)
		env.clock.Advance(time.Minute)
		second := env.request(t, 24)

		_, err := env.useCase.Authorize(context.Background(), first.PlainToken)
		assert.ErrorIs(t, err, adminAccessDomain.ErrTokenAlreadyUsed)

		_, err = env.useCase.Authorize(context.Background(), second.PlainToken)
		assert.NoError(t, err)
	})

	t.Run("Error_ValidationFailures", func(t *testing.T) {
		env := newTestEnv(t)

		inputs := []*adminAccessDomain.RequestAccessInput{
			{AdminID: env.adminID, UserID: env.user.ID, Reason: "", DurationHours: 24},
			{AdminID: env.adminID, UserID: env.user.ID, Reason: "   ", DurationHours: 24},
			{AdminID: env.adminID, UserID: env.user.ID, Reason: "ok", DurationHours: 24},
			{AdminID: env.adminID, UserID: env.user.ID, Reason: "valid reason", DurationHours: 0},
			{AdminID: env.adminID, UserID: env.user.ID, Reason: "valid reason", DurationHours: 169},
			{AdminID: uuid.Nil, UserID: env.user.ID, Reason: "valid reason", DurationHours: 24},
			{AdminID: env.adminID, UserID: uuid.Nil, Reason: "valid reason", DurationHours: 24},
		}

		for _, input := range inputs {
			output, err := env.useCase.RequestAccess(context.Background(), input)
			assert.Nil(t, output)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		}
		assert.Empty(t, env.outbox.events)
	})

	t.Run("Error_UserNotFound", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.useCase.RequestAccess(context.Background(), &adminAccessDomain.RequestAccessInput{
			AdminID:       env.adminID,
			UserID:        uuid.Must(uuid.NewV7()),
			Reason:        "valid reason",
			DurationHours: 24,
		})
		assert.ErrorIs(t, err, userDomain.ErrUserNotFound)
	})

	t.Run("Error_NoContactAddress", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.users[env.user.ID].Email = ""

		_, err := env.useCase.RequestAccess(context.Background(), &adminAccessDomain.RequestAccessInput{
			AdminID:       env.adminID,
			UserID:        env.user.ID,
			Reason:        "valid reason",
			DurationHours: 24,
		})
		assert.ErrorIs(t, err, adminAccessDomain.ErrNoContactAddress)
		assert.Empty(t, env.tokens.tokens)
	})

	t.Run("Error_OutboxFailureAbortsRequest", func(t *testing.T) {
		env := newTestEnv(t)
		env.outbox.err = errors.New("database unavailable")

		_, err := env.useCase.RequestAccess(context.Background(), &adminAccessDomain.RequestAccessInput{
			AdminID:       env.adminID,
			UserID:        env.user.ID,
			Reason:        "valid reason",
			DurationHours: 24,
		})
		assert.EqualError(t, err, "database unavailable")
	})
}

func TestAdminAccessUseCase_Authorize(t *testing.T) {
	t.Run("Success_GrantsForRequestedDuration", func(t *testing.T) {
		env := newTestEnv(t)
		output := env.request(t, 24)
		env.clock.Advance(2 * time.Hour)

		result, err := env.useCase.Authorize(context.Background(), output.PlainToken)
		require.NoError(t, err)
		assert.Equal(t, env.user.ID, result.UserID)
		assert.Equal(t, env.adminID, result.AdminID)
		assert.Equal(t, env.clock.now.Add(24*time.Hour), result.ExpiresAt)

		user := env.users.get(env.user.ID)
		assert.True(t, user.AdminAccessAuthorized)
		require.NotNil(t, user.AdminAccessAuthorizedAt)
		assert.Equal(t, env.clock.now, *user.AdminAccessAuthorizedAt)
	})

	t.Run("Error_SingleUse", func(t *testing.T) {
		env := newTestEnv(t)
		output := env.request(t, 24)

		_, err := env.useCase.Authorize(context.Background(), output.PlainToken)
		require.NoError(t, err)

		_, err = env.useCase.Authorize(context.Background(), output.PlainToken)
		assert.ErrorIs(t, err, adminAccessDomain.ErrTokenAlreadyUsed)
	})

	t.Run("Error_UnknownToken", func(t *testing.T) {
		env := newTestEnv(t)
		plain, _, err := env.tokenCodec.GenerateToken()
		require.NoError(t, err)

		_, err = env.useCase.Authorize(context.Background(), plain)
		assert.ErrorIs(t, err, adminAccessDomain.ErrInvalidToken)
		assert.NotErrorIs(t, err, adminAccessDomain.ErrTokenAlreadyUsed)
	})

	t.Run("Error_MalformedToken", func(t *testing.T) {
		env := newTestEnv(t)

		for _, token := range []string{"", "short", "not base64 at all!!"} {
			_, err := env.useCase.Authorize(context.Background(), token)
			assert.ErrorIs(t, err, adminAccessDomain.ErrInvalidToken)
		}
	})

	t.Run("Error_ExpiredToken", func(t *testing.T) {
		env := newTestEnv(t)
		output := env.request(t, 1)
		env.clock.Advance(time.Hour + time.Second)

		_, err := env.useCase.Authorize(context.Background(), output.PlainToken)
		assert.ErrorIs(t, err, adminAccessDomain.ErrExpiredToken)
		assert.False(t, env.users.get(env.user.ID).AdminAccessAuthorized)
	})

	t.Run("Error_UsedTakesPrecedenceOverExpired", func(t *testing.T) {
		env := newTestEnv(t)
		output := env.request(t, 1)

		_, err := env.useCase.Authorize(context.Background(), output.PlainToken)
		require.NoError(t, err)
		env.clock.Advance(2 * time.Hour)

		_, err = env.useCase.Authorize(context.Background(), output.PlainToken)
		assert.ErrorIs(t, err, adminAccessDomain.ErrTokenAlreadyUsed)
	})

	t.Run("Concurrent_RedemptionsGrantOnce", func(t *testing.T) {
		env := newTestEnv(t)
		output := env.request(t, 24)

		const attempts = 8
		var wg sync.WaitGroup
		results := make(chan error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := env.useCase.Authorize(context.Background(), output.PlainToken)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		successes := 0
		for err := range results {
			if err == nil {
				successes++
				continue
			}
			assert.ErrorIs(t, err, adminAccessDomain.ErrTokenAlreadyUsed)
		}
		assert.Equal(t, 1, successes)
	})
}

func TestAdminAccessUseCase_CheckAuthorization(t *testing.T) {
	t.Run("NotAuthorizedBeforeRedemption", func(t *testing.T) {
		env := newTestEnv(t)
		env.request(t, 24)

		ok, err := env.useCase.CheckAuthorization(context.Background(), env.user.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ExpiresAfterWindowAndClearsFlag", func(t *testing.T) {
		env := newTestEnv(t)
		output := env.request(t, 24)
		_, err := env.useCase.Authorize(context.Background(), output.PlainToken)
		require.NoError(t, err)

		env.clock.Advance(time.Hour)
		ok, err := env.useCase.CheckAuthorization(context.Background(), env.user.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		env.clock.Advance(24 * time.Hour)
		ok, err = env.useCase.CheckAuthorization(context.Background(), env.user.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		user := env.users.get(env.user.ID)
		assert.False(t, user.AdminAccessAuthorized)
		assert.Nil(t, user.AdminAccessExpiresAt)
	})

	t.Run("FlagWithoutExpiryIsCleared", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.users[env.user.ID].AdminAccessAuthorized = true

		ok, err := env.useCase.CheckAuthorization(context.Background(), env.user.ID)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, env.users.get(env.user.ID).AdminAccessAuthorized)
	})

	t.Run("Error_UserNotFound", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.useCase.CheckAuthorization(context.Background(), uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, userDomain.ErrUserNotFound)
	})
}

func TestAdminAccessUseCase_Revoke(t *testing.T) {
	t.Run("RevokesActiveGrant", func(t *testing.T) {
		env := newTestEnv(t)
		output := env.request(t, 24)
		_, err := env.useCase.Authorize(context.Background(), output.PlainToken)
		require.NoError(t, err)

		require.NoError(t, env.useCase.Revoke(context.Background(), env.user.ID))

		ok, err := env.useCase.CheckAuthorization(context.Background(), env.user.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("InvalidatesPendingToken", func(t *testing.T) {
		env := newTestEnv(t)
		output := env.request(t, 24)

		require.NoError(t, env.useCase.Revoke(context.Background(), env.user.ID))

		_, err := env.useCase.Authorize(context.Background(), output.PlainToken)
		assert.ErrorIs(t, err, adminAccessDomain.ErrTokenAlreadyUsed)
	})

	t.Run("Idempotent", func(t *testing.T) {
		env := newTestEnv(t)

		require.NoError(t, env.useCase.Revoke(context.Background(), env.user.ID))
		require.NoError(t, env.useCase.Revoke(context.Background(), env.user.ID))
	})
}

func TestAdminAccessUseCase_Status(t *testing.T) {
	statusOf := func(t *testing.T, env *testEnv) adminAccessDomain.AccessState {
		t.Helper()
		status, err := env.useCase.Status(context.Background(), env.user.ID)
		require.NoError(t, err)
		return status.State
	}

	t.Run("Lifecycle", func(t *testing.T) {
		env := newTestEnv(t)
		assert.Equal(t, adminAccessDomain.AccessStateNone, statusOf(t, env))

		output := env.request(t, 24)
		assert.Equal(t, adminAccessDomain.AccessStateRequested, statusOf(t, env))

		_, err := env.useCase.Authorize(context.Background(), output.PlainToken)
		require.NoError(t, err)
		assert.Equal(t, adminAccessDomain.AccessStateAuthorized, statusOf(t, env))

		env.clock.Advance(25 * time.Hour)
		assert.Equal(t, adminAccessDomain.AccessStateExpired, statusOf(t, env))
		assert.False(t, env.users.get(env.user.ID).AdminAccessAuthorized)
	})

	t.Run("RequestLapsesWithoutRedemption", func(t *testing.T) {
		env := newTestEnv(t)
		env.request(t, 1)
		env.clock.Advance(2 * time.Hour)

		assert.Equal(t, adminAccessDomain.AccessStateExpired, statusOf(t, env))
	})

	t.Run("Revoked", func(t *testing.T) {
		env := newTestEnv(t)
		output := env.request(t, 24)
		_, err := env.useCase.Authorize(context.Background(), output.PlainToken)
		require.NoError(t, err)
		require.NoError(t, env.useCase.Revoke(context.Background(), env.user.ID))

		assert.Equal(t, adminAccessDomain.AccessStateRevoked, statusOf(t, env))

		env.clock.Advance(time.Minute)
		env.request(t, 24)
		assert.Equal(t, adminAccessDomain.AccessStateRequested, statusOf(t, env))
	})
}

func TestAdminAccessUseCase_SweepExpired(t *testing.T) {
	env := newTestEnv(t)
	output := env.request(t, 24)
	_, err := env.useCase.Authorize(context.Background(), output.PlainToken)
	require.NoError(t, err)

	count, err := env.useCase.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	env.clock.Advance(25 * time.Hour)
	count, err = env.useCase.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.False(t, env.users.get(env.user.ID).AdminAccessAuthorized)
}
