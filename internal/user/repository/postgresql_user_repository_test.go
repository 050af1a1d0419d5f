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

	"github.com/allisson/chatseal/internal/user/domain"

	apperrors "github.com/allisson/chatseal/internal/errors"
)

var userColumnNames = []string{
	"id", "name", "email", "admin_access_authorized", "admin_access_requested_at",
	"admin_access_authorized_at", "admin_access_reason", "admin_access_expires_at", "admin_access_revoked_at",
	"created_at", "updated_at",
}

func newPostgresMock(t *testing.T) (*PostgreSQLUserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgreSQLUserRepository(db), mock
}

func TestPostgreSQLUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: uuid.Must(uuid.NewV7()), Name: "John Doe", Email: "john@example.com"}

	t.Run("Success", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Name, user.Email).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(ctx, user))
	})

	t.Run("Error_DuplicateEmail", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(errors.New("pq: duplicate key value violates unique constraint \"users_email_key\""))

		assert.ErrorIs(t, repo.Create(ctx, user), domain.ErrUserAlreadyExists)
	})
}

func TestPostgreSQLUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()
	expires := now.Add(24 * time.Hour)

	t.Run("Success", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		rows := sqlmock.NewRows(userColumnNames).
			AddRow(id.String(), "Jane", "jane@example.com", true, now, now, "support ticket", expires, nil, now, now)
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").WithArgs(id).WillReturnRows(rows)

		user, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "jane@example.com", user.Email)
		assert.True(t, user.AdminAccessAuthorized)
		require.NotNil(t, user.AdminAccessExpiresAt)
		assert.True(t, expires.Equal(*user.AdminAccessExpiresAt))
		require.NotNil(t, user.AdminAccessReason)
		assert.Equal(t, "support ticket", *user.AdminAccessReason)
	})

	t.Run("Success_NullAdminColumns", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		rows := sqlmock.NewRows(userColumnNames).
			AddRow(id.String(), "Jane", "jane@example.com", false, nil, nil, nil, nil, nil, now, now)
		mock.ExpectQuery("SELECT (.+) FROM users").WithArgs(id).WillReturnRows(rows)

		user, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, user.AdminAccessRequestedAt)
		assert.Nil(t, user.AdminAccessExpiresAt)
		assert.Nil(t, user.AdminAccessReason)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectQuery("SELECT (.+) FROM users").WithArgs(id).WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByID(ctx, id)
		assert.Nil(t, user)
		assert.True(t, apperrors.Is(err, domain.ErrUserNotFound))
	})

	t.Run("Error_Database", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectQuery("SELECT (.+) FROM users").WithArgs(id).WillReturnError(errors.New("connection reset"))

		_, err := repo.GetByID(ctx, id)
		assert.ErrorContains(t, err, "failed to get user by id")
	})
}

func TestPostgreSQLUserRepository_AdminAccessUpdates(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	t.Run("RecordAccessRequest", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectExec("UPDATE users\\s+SET admin_access_requested_at").
			WithArgs(id, now, "debugging").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.RecordAccessRequest(ctx, id, now, "debugging"))
	})

	t.Run("GrantAdminAccess", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectExec("UPDATE users\\s+SET admin_access_authorized = true").
			WithArgs(id, now, now.Add(time.Hour)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.GrantAdminAccess(ctx, id, now, now.Add(time.Hour)))
	})

	t.Run("GrantAdminAccess_NotFound", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.GrantAdminAccess(ctx, id, now, now), domain.ErrUserNotFound)
	})

	t.Run("RevokeAdminAccess", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectExec("UPDATE users\\s+SET admin_access_authorized = false, admin_access_authorized_at = NULL").
			WithArgs(id, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.RevokeAdminAccess(ctx, id, now))
	})

	t.Run("ClearExpiredAdminAccess_Cleared", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectExec("WHERE id = \\$1 AND admin_access_authorized = true").
			WithArgs(id, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		cleared, err := repo.ClearExpiredAdminAccess(ctx, id, now)
		require.NoError(t, err)
		assert.True(t, cleared)
	})

	t.Run("ClearExpiredAdminAccess_AlreadyCleared", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectExec("WHERE id = \\$1 AND admin_access_authorized = true").
			WithArgs(id, now).
			WillReturnResult(sqlmock.NewResult(0, 0))

		cleared, err := repo.ClearExpiredAdminAccess(ctx, id, now)
		require.NoError(t, err)
		assert.False(t, cleared)
	})

	t.Run("ClearAllExpiredAdminAccess", func(t *testing.T) {
		repo, mock := newPostgresMock(t)
		mock.ExpectExec("WHERE admin_access_authorized = true").
			WithArgs(now).
			WillReturnResult(sqlmock.NewResult(0, 3))

		count, err := repo.ClearAllExpiredAdminAccess(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
