// Package repository implements admin authorization token persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	adminAccessDomain "github.com/allisson/chatseal/internal/adminaccess/domain"
	"github.com/allisson/chatseal/internal/database"
	apperrors "github.com/allisson/chatseal/internal/errors"
)

const tokenColumns = `id, user_id, admin_id, token_hash, reason, duration_hours, used, used_at, created_at, expires_at`

// PostgreSQLAdminAuthTokenRepository implements AdminAuthToken persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLAdminAuthTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLAdminAuthTokenRepository creates a new PostgreSQL AdminAuthToken repository.
func NewPostgreSQLAdminAuthTokenRepository(db *sql.DB) *PostgreSQLAdminAuthTokenRepository {
	return &PostgreSQLAdminAuthTokenRepository{db: db}
}

// Create inserts a new token.
func (p *PostgreSQLAdminAuthTokenRepository) Create(
	ctx context.Context,
	token *adminAccessDomain.AdminAuthToken,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO admin_auth_tokens (` + tokenColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.UserID,
		token.AdminID,
		token.TokenHash,
		token.Reason,
		token.DurationHours,
		token.Used,
		token.UsedAt,
		token.CreatedAt,
		token.ExpiresAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create admin auth token")
	}
	return nil
}

// GetByTokenHash retrieves a token by its SHA-256 hash. Returns ErrTokenNotFound if not found.
func (p *PostgreSQLAdminAuthTokenRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*adminAccessDomain.AdminAuthToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM admin_auth_tokens WHERE token_hash = $1`

	return p.scanOne(querier.QueryRowContext(ctx, query, tokenHash), "failed to get admin auth token by hash")
}

// GetLatestByUserID returns the most recently issued token of a user.
func (p *PostgreSQLAdminAuthTokenRepository) GetLatestByUserID(
	ctx context.Context,
	userID uuid.UUID,
) (*adminAccessDomain.AdminAuthToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM admin_auth_tokens
			  WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`

	return p.scanOne(querier.QueryRowContext(ctx, query, userID), "failed to get latest admin auth token")
}

// MarkUsed claims an unused token. Returns false when it was already used.
func (p *PostgreSQLAdminAuthTokenRepository) MarkUsed(
	ctx context.Context,
	id uuid.UUID,
	usedAt time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE admin_auth_tokens SET used = true, used_at = $1 WHERE id = $2 AND used = false`

	result, err := querier.ExecContext(ctx, query, usedAt, id)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to mark admin auth token used")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows == 1, nil
}

// SupersedeOutstanding marks every unused token of a user as used, except keepID.
func (p *PostgreSQLAdminAuthTokenRepository) SupersedeOutstanding(
	ctx context.Context,
	userID, keepID uuid.UUID,
	usedAt time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE admin_auth_tokens SET used = true, used_at = $1
			  WHERE user_id = $2 AND used = false AND id <> $3`

	result, err := querier.ExecContext(ctx, query, usedAt, userID, keepID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to supersede admin auth tokens")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows, nil
}

func (p *PostgreSQLAdminAuthTokenRepository) scanOne(
	row *sql.Row,
	msg string,
) (*adminAccessDomain.AdminAuthToken, error) {
	var token adminAccessDomain.AdminAuthToken
	var usedAt sql.NullTime

	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.AdminID,
		&token.TokenHash,
		&token.Reason,
		&token.DurationHours,
		&token.Used,
		&usedAt,
		&token.CreatedAt,
		&token.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, adminAccessDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, msg)
	}

	if usedAt.Valid {
		token.UsedAt = &usedAt.Time
	}
	return &token, nil
}
