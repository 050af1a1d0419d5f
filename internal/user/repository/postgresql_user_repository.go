// Package repository provides data persistence implementations for user entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/chatseal/internal/database"
	"github.com/allisson/chatseal/internal/user/domain"

	apperrors "github.com/allisson/chatseal/internal/errors"
)

const postgresUserColumns = `id, name, email, admin_access_authorized, admin_access_requested_at,
	admin_access_authorized_at, admin_access_reason, admin_access_expires_at, admin_access_revoked_at,
	created_at, updated_at`

// PostgreSQLUserRepository handles user persistence for PostgreSQL
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQLUserRepository
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *PostgreSQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (id, name, email, admin_access_authorized, created_at, updated_at)
			  VALUES ($1, $2, $3, false, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, user.ID, user.Name, user.Email)
	if err != nil {
		// Check for unique constraint violation (duplicate email)
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *PostgreSQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresUserColumns + ` FROM users WHERE id = $1`

	var row userRow
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&row.id,
		&row.name,
		&row.email,
		&row.adminAccessAuthorized,
		&row.adminAccessRequestedAt,
		&row.adminAccessAuthorizedAt,
		&row.adminAccessReason,
		&row.adminAccessExpiresAt,
		&row.adminAccessRevokedAt,
		&row.createdAt,
		&row.updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by id")
	}

	return row.toDomain(), nil
}

// RecordAccessRequest stamps the time and reason of a pending admin access request.
func (r *PostgreSQLUserRepository) RecordAccessRequest(
	ctx context.Context,
	id uuid.UUID,
	requestedAt time.Time,
	reason string,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users
			  SET admin_access_requested_at = $2, admin_access_reason = $3,
			      admin_access_revoked_at = NULL, updated_at = NOW()
			  WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id, requestedAt, reason)
	if err != nil {
		return apperrors.Wrap(err, "failed to record admin access request")
	}
	return requireOneRow(result, "failed to record admin access request")
}

// GrantAdminAccess marks the user as having authorized admin access until expiresAt.
func (r *PostgreSQLUserRepository) GrantAdminAccess(
	ctx context.Context,
	id uuid.UUID,
	authorizedAt, expiresAt time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users
			  SET admin_access_authorized = true, admin_access_authorized_at = $2,
			      admin_access_expires_at = $3, admin_access_revoked_at = NULL, updated_at = NOW()
			  WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id, authorizedAt, expiresAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to grant admin access")
	}
	return requireOneRow(result, "failed to grant admin access")
}

// RevokeAdminAccess clears the grant regardless of its expiry. Revoking a
// user without a grant is not an error.
func (r *PostgreSQLUserRepository) RevokeAdminAccess(ctx context.Context, id uuid.UUID, revokedAt time.Time) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users
			  SET admin_access_authorized = false, admin_access_authorized_at = NULL,
			      admin_access_expires_at = NULL, admin_access_revoked_at = $2, updated_at = NOW()
			  WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id, revokedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke admin access")
	}
	return requireOneRow(result, "failed to revoke admin access")
}

// ClearExpiredAdminAccess clears the grant of one user only if it is still
// set and expired at now. Returns whether a row changed; a concurrent clear
// makes this a no-op.
func (r *PostgreSQLUserRepository) ClearExpiredAdminAccess(
	ctx context.Context,
	id uuid.UUID,
	now time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users
			  SET admin_access_authorized = false, admin_access_expires_at = NULL, updated_at = NOW()
			  WHERE id = $1 AND admin_access_authorized = true
			    AND (admin_access_expires_at IS NULL OR admin_access_expires_at < $2)`

	result, err := querier.ExecContext(ctx, query, id, now)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to clear expired admin access")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to clear expired admin access")
	}
	return rows > 0, nil
}

// ClearAllExpiredAdminAccess clears every grant expired at now and returns the count.
func (r *PostgreSQLUserRepository) ClearAllExpiredAdminAccess(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users
			  SET admin_access_authorized = false, admin_access_expires_at = NULL, updated_at = NOW()
			  WHERE admin_access_authorized = true
			    AND (admin_access_expires_at IS NULL OR admin_access_expires_at < $1)`

	result, err := querier.ExecContext(ctx, query, now)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to sweep expired admin access")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to sweep expired admin access")
	}
	return rows, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
