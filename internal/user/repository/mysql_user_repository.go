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

const mysqlUserColumns = `id, name, email, admin_access_authorized, admin_access_requested_at,
	admin_access_authorized_at, admin_access_reason, admin_access_expires_at, admin_access_revoked_at,
	created_at, updated_at`

// MySQLUserRepository handles user persistence for MySQL
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (id, name, email, admin_access_authorized, created_at, updated_at)
			  VALUES (?, ?, ?, false, NOW(), NOW())`

	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query, uuidBytes, user.Name, user.Email)
	if err != nil {
		// Check for unique constraint violation (duplicate email)
		if isMySQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *MySQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlUserColumns + ` FROM users WHERE id = ?`

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	var row userRow
	var idBytes []byte
	err = querier.QueryRowContext(ctx, query, uuidBytes).Scan(
		&idBytes,
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

	// Convert bytes back to UUID
	if err := row.id.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	return row.toDomain(), nil
}

// RecordAccessRequest stamps the time and reason of a pending admin access request.
func (r *MySQLUserRepository) RecordAccessRequest(
	ctx context.Context,
	id uuid.UUID,
	requestedAt time.Time,
	reason string,
) error {
	query := `UPDATE users
			  SET admin_access_requested_at = ?, admin_access_reason = ?,
			      admin_access_revoked_at = NULL, updated_at = NOW()
			  WHERE id = ?`

	return r.execForUser(ctx, id, "failed to record admin access request", query, requestedAt, reason)
}

// GrantAdminAccess marks the user as having authorized admin access until expiresAt.
func (r *MySQLUserRepository) GrantAdminAccess(
	ctx context.Context,
	id uuid.UUID,
	authorizedAt, expiresAt time.Time,
) error {
	query := `UPDATE users
			  SET admin_access_authorized = true, admin_access_authorized_at = ?,
			      admin_access_expires_at = ?, admin_access_revoked_at = NULL, updated_at = NOW()
			  WHERE id = ?`

	return r.execForUser(ctx, id, "failed to grant admin access", query, authorizedAt, expiresAt)
}

// RevokeAdminAccess clears the grant regardless of its expiry.
func (r *MySQLUserRepository) RevokeAdminAccess(ctx context.Context, id uuid.UUID, revokedAt time.Time) error {
	query := `UPDATE users
			  SET admin_access_authorized = false, admin_access_authorized_at = NULL,
			      admin_access_expires_at = NULL, admin_access_revoked_at = ?, updated_at = NOW()
			  WHERE id = ?`

	return r.execForUser(ctx, id, "failed to revoke admin access", query, revokedAt)
}

// ClearExpiredAdminAccess clears the grant of one user only if it is still
// set and expired at now.
func (r *MySQLUserRepository) ClearExpiredAdminAccess(
	ctx context.Context,
	id uuid.UUID,
	now time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users
			  SET admin_access_authorized = false, admin_access_expires_at = NULL, updated_at = NOW()
			  WHERE id = ? AND admin_access_authorized = true
			    AND (admin_access_expires_at IS NULL OR admin_access_expires_at < ?)`

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, query, uuidBytes, now)
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
func (r *MySQLUserRepository) ClearAllExpiredAdminAccess(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users
			  SET admin_access_authorized = false, admin_access_expires_at = NULL, updated_at = NOW()
			  WHERE admin_access_authorized = true
			    AND (admin_access_expires_at IS NULL OR admin_access_expires_at < ?)`

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

// execForUser runs an update whose last placeholder is the user id.
//
// MySQL reports changed rather than matched rows, so an update that leaves
// the row unchanged falls back to an existence check before reporting
// ErrUserNotFound.
func (r *MySQLUserRepository) execForUser(
	ctx context.Context,
	id uuid.UUID,
	msg string,
	query string,
	args ...any,
) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, query, append(args, uuidBytes)...)
	if err != nil {
		return apperrors.Wrap(err, msg)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, msg)
	}
	if rows > 0 {
		return nil
	}

	var exists int
	err = querier.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, uuidBytes).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return apperrors.Wrap(err, msg)
	}
	return nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
