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

// PostgreSQLMessageRepository handles message persistence for PostgreSQL.
type PostgreSQLMessageRepository struct {
	db *sql.DB
}

// NewPostgreSQLMessageRepository creates a new PostgreSQLMessageRepository.
func NewPostgreSQLMessageRepository(db *sql.DB) *PostgreSQLMessageRepository {
	return &PostgreSQLMessageRepository{db: db}
}

// Create inserts a new message.
func (r *PostgreSQLMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO messages (` + messageColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	args := []any{message.ID, message.ConversationID, message.UserID, message.Role}
	args = append(args, messageContentArgs(message)...)
	args = append(args, message.CreatedAt)

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Wrap(err, "failed to create message")
	}
	return nil
}

// Get retrieves a message by ID.
func (r *PostgreSQLMessageRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	var row messageRow
	err := querier.QueryRowContext(ctx, query, id).
		Scan(row.scanTargets(&row.id, &row.conversationID, &row.userID)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get message")
	}

	return row.toDomain(), nil
}

// UpdateContent replaces the content columns of a message.
func (r *PostgreSQLMessageRepository) UpdateContent(ctx context.Context, message *domain.Message) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE messages
			  SET text = $1, translated_text = $2,
			      text_ciphertext = $3, text_iv = $4, text_auth_tag = $5, text_key_salt = $6,
			      translated_text_ciphertext = $7, translated_text_iv = $8,
			      translated_text_auth_tag = $9, translated_text_key_salt = $10, is_encrypted = $11
			  WHERE id = $12`

	args := messageContentArgs(message)
	args = append(args, message.ID)

	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Wrap(err, "failed to update message")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update message")
	}
	if rows == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

// ListByConversationID lists the messages of a conversation, oldest first.
func (r *PostgreSQLMessageRepository) ListByConversationID(
	ctx context.Context,
	conversationID uuid.UUID,
	offset, limit int,
) ([]*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
			  WHERE conversation_id = $1
			  ORDER BY created_at ASC, id ASC
			  LIMIT $2 OFFSET $3`

	return r.list(ctx, query, conversationID, limit, offset)
}

// ListUnencryptedOwners returns every owner with at least one plaintext
// message. A null entry stands for guest messages.
func (r *PostgreSQLMessageRepository) ListUnencryptedOwners(ctx context.Context) ([]uuid.NullUUID, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT DISTINCT user_id FROM messages WHERE is_encrypted = false`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list unencrypted message owners")
	}
	defer func() {
		_ = rows.Close()
	}()

	var owners []uuid.NullUUID
	for rows.Next() {
		var owner uuid.NullUUID
		if err := rows.Scan(&owner); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan message owner")
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate message owners")
	}
	return owners, nil
}

// ListUnencrypted returns up to limit plaintext messages of owner with an id
// greater than afterID, ordered by id.
func (r *PostgreSQLMessageRepository) ListUnencrypted(
	ctx context.Context,
	owner uuid.NullUUID,
	afterID uuid.UUID,
	limit int,
) ([]*domain.Message, error) {
	if !owner.Valid {
		query := `SELECT ` + messageColumns + ` FROM messages
				  WHERE user_id IS NULL AND is_encrypted = false AND id > $1
				  ORDER BY id
				  LIMIT $2`
		return r.list(ctx, query, afterID, limit)
	}

	query := `SELECT ` + messageColumns + ` FROM messages
			  WHERE user_id = $1 AND is_encrypted = false AND id > $2
			  ORDER BY id
			  LIMIT $3`
	return r.list(ctx, query, owner.UUID, afterID, limit)
}

// MarkEncrypted stores the encrypted content of a message that is still
// plaintext. It reports false when another writer encrypted the row first.
func (r *PostgreSQLMessageRepository) MarkEncrypted(ctx context.Context, message *domain.Message) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE messages
			  SET text = NULL, translated_text = NULL,
			      text_ciphertext = $1, text_iv = $2, text_auth_tag = $3, text_key_salt = $4,
			      translated_text_ciphertext = $5, translated_text_iv = $6,
			      translated_text_auth_tag = $7, translated_text_key_salt = $8, is_encrypted = true
			  WHERE id = $9 AND is_encrypted = false`

	args := messageContentArgs(message)[2:10]
	args = append(args, message.ID)

	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to mark message encrypted")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to mark message encrypted")
	}
	return rows == 1, nil
}

func (r *PostgreSQLMessageRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Message, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list messages")
	}
	defer func() {
		_ = rows.Close()
	}()

	var messages []*domain.Message
	for rows.Next() {
		var row messageRow
		if err := rows.Scan(row.scanTargets(&row.id, &row.conversationID, &row.userID)...); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan message")
		}
		messages = append(messages, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate messages")
	}
	return messages, nil
}
