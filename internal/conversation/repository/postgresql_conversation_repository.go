// Package repository provides data persistence implementations for conversations and messages.
//
// Content columns are written exactly as the domain hands them over: the
// field encryptor has already replaced plaintext with encrypted records.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/chatseal/internal/conversation/domain"
	"github.com/allisson/chatseal/internal/database"

	apperrors "github.com/allisson/chatseal/internal/errors"
)

// PostgreSQLConversationRepository handles conversation persistence for PostgreSQL.
type PostgreSQLConversationRepository struct {
	db *sql.DB
}

// NewPostgreSQLConversationRepository creates a new PostgreSQLConversationRepository.
func NewPostgreSQLConversationRepository(db *sql.DB) *PostgreSQLConversationRepository {
	return &PostgreSQLConversationRepository{db: db}
}

// Create inserts a new conversation.
func (r *PostgreSQLConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO conversations (` + conversationColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	args := []any{conversation.ID, conversation.UserID}
	args = append(args, conversationContentArgs(conversation)...)
	args = append(args, conversation.CreatedAt, conversation.UpdatedAt)

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Wrap(err, "failed to create conversation")
	}
	return nil
}

// Get retrieves a conversation by ID.
func (r *PostgreSQLConversationRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`

	var row conversationRow
	err := querier.QueryRowContext(ctx, query, id).Scan(row.scanTargets(&row.id, &row.userID)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get conversation")
	}

	return row.toDomain(), nil
}

// UpdateContent replaces the content columns and bumps updated_at.
func (r *PostgreSQLConversationRepository) UpdateContent(
	ctx context.Context,
	conversation *domain.Conversation,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE conversations
			  SET title = $1, custom_name = $2,
			      title_ciphertext = $3, title_iv = $4, title_auth_tag = $5, title_key_salt = $6,
			      custom_name_ciphertext = $7, custom_name_iv = $8, custom_name_auth_tag = $9,
			      custom_name_key_salt = $10, is_encrypted = $11, updated_at = $12
			  WHERE id = $13`

	args := conversationContentArgs(conversation)
	args = append(args, conversation.UpdatedAt, conversation.ID)

	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Wrap(err, "failed to update conversation")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update conversation")
	}
	if rows == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

// ListByUserID lists the conversations owned by userID, most recently updated first.
func (r *PostgreSQLConversationRepository) ListByUserID(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations
			  WHERE user_id = $1
			  ORDER BY updated_at DESC, id DESC
			  LIMIT $2 OFFSET $3`

	return r.list(ctx, query, userID, limit, offset)
}

// ListUnencryptedOwners returns every owner with at least one plaintext
// conversation. A null entry stands for guest conversations.
func (r *PostgreSQLConversationRepository) ListUnencryptedOwners(ctx context.Context) ([]uuid.NullUUID, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT DISTINCT user_id FROM conversations WHERE is_encrypted = false`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list unencrypted conversation owners")
	}
	defer func() {
		_ = rows.Close()
	}()

	var owners []uuid.NullUUID
	for rows.Next() {
		var owner uuid.NullUUID
		if err := rows.Scan(&owner); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan conversation owner")
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate conversation owners")
	}
	return owners, nil
}

// ListUnencrypted returns up to limit plaintext conversations of owner with
// an id greater than afterID, ordered by id.
func (r *PostgreSQLConversationRepository) ListUnencrypted(
	ctx context.Context,
	owner uuid.NullUUID,
	afterID uuid.UUID,
	limit int,
) ([]*domain.Conversation, error) {
	if !owner.Valid {
		query := `SELECT ` + conversationColumns + ` FROM conversations
				  WHERE user_id IS NULL AND is_encrypted = false AND id > $1
				  ORDER BY id
				  LIMIT $2`
		return r.list(ctx, query, afterID, limit)
	}

	query := `SELECT ` + conversationColumns + ` FROM conversations
			  WHERE user_id = $1 AND is_encrypted = false AND id > $2
			  ORDER BY id
			  LIMIT $3`
	return r.list(ctx, query, owner.UUID, afterID, limit)
}

// MarkEncrypted stores the encrypted content of a conversation that is still
// plaintext. It reports false when another writer encrypted the row first.
func (r *PostgreSQLConversationRepository) MarkEncrypted(
	ctx context.Context,
	conversation *domain.Conversation,
) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE conversations
			  SET title = NULL, custom_name = NULL,
			      title_ciphertext = $1, title_iv = $2, title_auth_tag = $3, title_key_salt = $4,
			      custom_name_ciphertext = $5, custom_name_iv = $6, custom_name_auth_tag = $7,
			      custom_name_key_salt = $8, is_encrypted = true
			  WHERE id = $9 AND is_encrypted = false`

	args := conversationContentArgs(conversation)[2:10]
	args = append(args, conversation.ID)

	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to mark conversation encrypted")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to mark conversation encrypted")
	}
	return rows == 1, nil
}

func (r *PostgreSQLConversationRepository) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Conversation, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list conversations")
	}
	defer func() {
		_ = rows.Close()
	}()

	var conversations []*domain.Conversation
	for rows.Next() {
		var row conversationRow
		if err := rows.Scan(row.scanTargets(&row.id, &row.userID)...); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan conversation")
		}
		conversations = append(conversations, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate conversations")
	}
	return conversations, nil
}
