package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adminAccessDomain "github.com/allisson/chatseal/internal/adminaccess/domain"
)

var tokenColumnNames = []string{
	"id", "user_id", "admin_id", "token_hash", "reason", "duration_hours",
	"used", "used_at", "created_at", "expires_at",
}

func newPostgresMock(t *testing.T) (*PostgreSQLAdminAuthTokenRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgreSQLAdminAuthTokenRepository(db), mock
}

func newTestToken() *adminAccessDomain.AdminAuthToken {
	now := time.Now().UTC().Truncate(time.Second)
	return &adminAccessDomain.AdminAuthToken{
		ID:            uuid.Must(uuid.NewV7()),
		UserID:        uuid.Must(uuid.NewV7()),
		AdminID:       uuid.Must(uuid.NewV7()),
		TokenHash:     "4f2a9c",
		Reason:        "abuse report",
		DurationHours: 24,
		CreatedAt:     now,
		ExpiresAt:     now.Add(24 * time.Hour),
	}
}

func TestPostgreSQLAdminAuthTokenRepository_Create(t *testing.T) {
	ctx := context.Background()
	token := newTestToken()

	t.Run("Success", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectExec("INSERT INTO admin_auth_tokens").
			WithArgs(
				token.ID, token.UserID, token.AdminID, token.TokenHash, token.Reason,
				token.DurationHours, false, sqlmock.AnyArg(), token.CreatedAt, token.ExpiresAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(ctx, token))
	})

	t.Run("Error_Database", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectExec("INSERT INTO admin_auth_tokens").WillReturnError(errors.New("connection reset"))

		err := repo.Create(ctx, token)
		assert.ErrorContains(t, err, "failed to create admin auth token")
	})
}

func TestPostgreSQLAdminAuthTokenRepository_GetByTokenHash(t *testing.T) {
	ctx := context.Background()
	token := newTestToken()

	t.Run("Success", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		usedAt := token.CreatedAt.Add(time.Hour)
		rows := sqlmock.NewRows(tokenColumnNames).AddRow(
			token.ID.String(), token.UserID.String(), token.AdminID.String(), token.TokenHash, token.Reason,
			token.DurationHours, true, usedAt, token.CreatedAt, token.ExpiresAt,
		)
		mock.ExpectQuery("SELECT (.+) FROM admin_auth_tokens WHERE token_hash = \\$1").
			WithArgs(token.TokenHash).
			WillReturnRows(rows)

		got, err := repo.GetByTokenHash(ctx, token.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, token.ID, got.ID)
		assert.Equal(t, token.UserID, got.UserID)
		assert.Equal(t, token.AdminID, got.AdminID)
		assert.True(t, got.Used)
		require.NotNil(t, got.UsedAt)
		assert.Equal(t, usedAt, *got.UsedAt)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectQuery("SELECT (.+) FROM admin_auth_tokens").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByTokenHash(ctx, "missing")
		assert.ErrorIs(t, err, adminAccessDomain.ErrTokenNotFound)
	})
}

func TestPostgreSQLAdminAuthTokenRepository_GetLatestByUserID(t *testing.T) {
	ctx := context.Background()
	token := newTestToken()

	t.Run("Success", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		rows := sqlmock.NewRows(tokenColumnNames).AddRow(
			token.ID.String(), token.UserID.String(), token.AdminID.String(), token.TokenHash, token.Reason,
			token.DurationHours, false, nil, token.CreatedAt, token.ExpiresAt,
		)
		mock.ExpectQuery("WHERE user_id = \\$1 ORDER BY created_at DESC, id DESC LIMIT 1").
			WithArgs(token.UserID).
			WillReturnRows(rows)

		got, err := repo.GetLatestByUserID(ctx, token.UserID)
		require.NoError(t, err)
		assert.Equal(t, token.ID, got.ID)
		assert.Nil(t, got.UsedAt)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectQuery("SELECT (.+) FROM admin_auth_tokens").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetLatestByUserID(ctx, token.UserID)
		assert.ErrorIs(t, err, adminAccessDomain.ErrTokenNotFound)
	})
}

func TestPostgreSQLAdminAuthTokenRepository_MarkUsed(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	t.Run("Claimed", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectExec("UPDATE admin_auth_tokens SET used = true, used_at = \\$1 WHERE id = \\$2 AND used = false").
			WithArgs(now, id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		claimed, err := repo.MarkUsed(ctx, id, now)
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("AlreadyUsed", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectExec("UPDATE admin_auth_tokens").
			WithArgs(now, id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		claimed, err := repo.MarkUsed(ctx, id, now)
		require.NoError(t, err)
		assert.False(t, claimed)
	})
}

func TestPostgreSQLAdminAuthTokenRepository_SupersedeOutstanding(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	keepID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	repo, mock := newPostgresMock(t)
	mock.ExpectExec("WHERE user_id = \\$2 AND used = false AND id <> \\$3").
		WithArgs(now, userID, keepID).
		WillReturnResult(sqlmock.NewResult(0, 2))

	count, err := repo.SupersedeOutstanding(ctx, userID, keepID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
