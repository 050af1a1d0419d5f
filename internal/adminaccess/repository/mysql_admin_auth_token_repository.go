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

// MySQLAdminAuthTokenRepository implements AdminAuthToken persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLAdminAuthTokenRepository struct {
	db *sql.DB
}

// NewMySQLAdminAuthTokenRepository creates a new MySQL AdminAuthToken repository.
func NewMySQLAdminAuthTokenRepository(db *sql.DB) *MySQLAdminAuthTokenRepository {
	return &MySQLAdminAuthTokenRepository{db: db}
}

// Create inserts a new token.
func (m *MySQLAdminAuthTokenRepository) Create(ctx context.Context, token *adminAccessDomain.AdminAuthToken) error {
	querier := database.GetTx(ctx, m.db)

	id, userID, adminID, err := marshalTokenIDs(token.ID, token.UserID, token.AdminID)
	if err != nil {
		return err
	}

	query := `INSERT INTO admin_auth_tokens (` + tokenColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		userID,
		adminID,
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
func (m *MySQLAdminAuthTokenRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*adminAccessDomain.AdminAuthToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + tokenColumns + ` FROM admin_auth_tokens WHERE token_hash = ?`

	return m.scanOne(querier.QueryRowContext(ctx, query, tokenHash), "failed to get admin auth token by hash")
}

// GetLatestByUserID returns the most recently issued token of a user.
func (m *MySQLAdminAuthTokenRepository) GetLatestByUserID(
	ctx context.Context,
	userID uuid.UUID,
) (*adminAccessDomain.AdminAuthToken, error) {
	querier := database.GetTx(ctx, m.db)

	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT ` + tokenColumns + ` FROM admin_auth_tokens
			  WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`

	return m.scanOne(querier.QueryRowContext(ctx, query, userIDBytes), "failed to get latest admin auth token")
}

// MarkUsed claims an unused token. Returns false when it was already used.
func (m *MySQLAdminAuthTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal token id")
	}

	query := `UPDATE admin_auth_tokens SET used = true, used_at = ? WHERE id = ? AND used = false`

	result, err := querier.ExecContext(ctx, query, usedAt, idBytes)
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
func (m *MySQLAdminAuthTokenRepository) SupersedeOutstanding(
	ctx context.Context,
	userID, keepID uuid.UUID,
	usedAt time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal user id")
	}
	keepIDBytes, err := keepID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal token id")
	}

	query := `UPDATE admin_auth_tokens SET used = true, used_at = ?
			  WHERE user_id = ? AND used = false AND id <> ?`

	result, err := querier.ExecContext(ctx, query, usedAt, userIDBytes, keepIDBytes)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to supersede admin auth tokens")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows, nil
}

func (m *MySQLAdminAuthTokenRepository) scanOne(
	row *sql.Row,
	msg string,
) (*adminAccessDomain.AdminAuthToken, error) {
	var token adminAccessDomain.AdminAuthToken
	var id, userID, adminID []byte
	var usedAt sql.NullTime

	err := row.Scan(
		&id,
		&userID,
		&adminID,
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

	if err := token.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token id")
	}
	if err := token.UserID.UnmarshalBinary(userID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}
	if err := token.AdminID.UnmarshalBinary(adminID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal admin id")
	}
	if usedAt.Valid {
		token.UsedAt = &usedAt.Time
	}
	return &token, nil
}

func marshalTokenIDs(id, userID, adminID uuid.UUID) ([]byte, []byte, []byte, error) {
	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, nil, nil, apperrors.Wrap(err, "failed to marshal token id")
	}
	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, nil, nil, apperrors.Wrap(err, "failed to marshal user id")
	}
	adminIDBytes, err := adminID.MarshalBinary()
	if err != nil {
		return nil, nil, nil, apperrors.Wrap(err, "failed to marshal admin id")
	}
	return idBytes, userIDBytes, adminIDBytes, nil
}
