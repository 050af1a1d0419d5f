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

// MySQLMessageRepository handles message persistence for MySQL.
type MySQLMessageRepository struct {
	db *sql.DB
}

// NewMySQLMessageRepository creates a new MySQLMessageRepository.
func NewMySQLMessageRepository(db *sql.DB) *MySQLMessageRepository {
	return &MySQLMessageRepository{db: db}
}

// Create inserts a new message.
func (r *MySQLMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO messages (` + messageColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := marshalUUID(message.ID)
	if err != nil {
		return err
	}
	conversationID, err := marshalUUID(message.ConversationID)
	if err != nil {
		return err
	}
	userID, err := marshalNullUUID(message.UserID)
	if err != nil {
		return err
	}

	args := []any{id, conversationID, userID, message.Role}
	args = append(args, messageContentArgs(message)...)
	args = append(args, message.CreatedAt)

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Wrap(err, "failed to create message")
	}
	return nil
}

// Get retrieves a message by ID.
func (r *MySQLMessageRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`

	idBytes, err := marshalUUID(id)
	if err != nil {
		return nil, err
	}

	var row messageRow
	var rowID, conversationID, userID binaryUUID
	err = querier.QueryRowContext(ctx, query, idBytes).
		Scan(row.scanTargets(&rowID, &conversationID, &userID)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get message")
	}

	return mysqlMessage(&row, &rowID, &conversationID, &userID)
}

// UpdateContent replaces the content columns of a message loaded in the same
// transaction.
func (r *MySQLMessageRepository) UpdateContent(ctx context.Context, message *domain.Message) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE messages
			  SET text = ?, translated_text = ?,
			      text_ciphertext = ?, text_iv = ?, text_auth_tag = ?, text_key_salt = ?,
			      translated_text_ciphertext = ?, translated_text_iv = ?,
			      translated_text_auth_tag = ?, translated_text_key_salt = ?, is_encrypted = ?
			  WHERE id = ?`

	id, err := marshalUUID(message.ID)
	if err != nil {
		return err
	}

	args := messageContentArgs(message)
	args = append(args, id)

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Wrap(err, "failed to update message")
	}
	return nil
}

// ListByConversationID lists the messages of a conversation, oldest first.
func (r *MySQLMessageRepository) ListByConversationID(
	ctx context.Context,
	conversationID uuid.UUID,
	offset, limit int,
) ([]*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
			  WHERE conversation_id = ?
			  ORDER BY created_at ASC, id ASC
			  LIMIT ? OFFSET ?`

	conversationBytes, err := marshalUUID(conversationID)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, query, conversationBytes, limit, offset)
}

// ListUnencryptedOwners returns every owner with at least one plaintext
// message. A null entry stands for guest messages.
func (r *MySQLMessageRepository) ListUnencryptedOwners(ctx context.Context) ([]uuid.NullUUID, error) {
	return listMySQLOwners(ctx, database.GetTx(ctx, r.db),
		`SELECT DISTINCT user_id FROM messages WHERE is_encrypted = false`)
}

// ListUnencrypted returns up to limit plaintext messages of owner with an id
// greater than afterID, ordered by id.
func (r *MySQLMessageRepository) ListUnencrypted(
	ctx context.Context,
	owner uuid.NullUUID,
	afterID uuid.UUID,
	limit int,
) ([]*domain.Message, error) {
	after, err := marshalUUID(afterID)
	if err != nil {
		return nil, err
	}

	if !owner.Valid {
		query := `SELECT ` + messageColumns + ` FROM messages
				  WHERE user_id IS NULL AND is_encrypted = false AND id > ?
				  ORDER BY id
				  LIMIT ?`
		return r.list(ctx, query, after, limit)
	}

	ownerBytes, err := marshalUUID(owner.UUID)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + messageColumns + ` FROM messages
			  WHERE user_id = ? AND is_encrypted = false AND id > ?
			  ORDER BY id
			  LIMIT ?`
	return r.list(ctx, query, ownerBytes, after, limit)
}

// MarkEncrypted stores the encrypted content of a message that is still
// plaintext. It reports false when another writer encrypted the row first.
func (r *MySQLMessageRepository) MarkEncrypted(ctx context.Context, message *domain.Message) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE messages
			  SET text = NULL, translated_text = NULL,
			      text_ciphertext = ?, text_iv = ?, text_auth_tag = ?, text_key_salt = ?,
			      translated_text_ciphertext = ?, translated_text_iv = ?,
			      translated_text_auth_tag = ?, translated_text_key_salt = ?, is_encrypted = true
			  WHERE id = ? AND is_encrypted = false`

	id, err := marshalUUID(message.ID)
	if err != nil {
		return false, err
	}

	args := messageContentArgs(message)[2:10]
	args = append(args, id)

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

func (r *MySQLMessageRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Message, error) {
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
		var rowID, conversationID, userID binaryUUID
		if err := rows.Scan(row.scanTargets(&rowID, &conversationID, &userID)...); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan message")
		}
		message, err := mysqlMessage(&row, &rowID, &conversationID, &userID)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate messages")
	}
	return messages, nil
}

func mysqlMessage(row *messageRow, id, conversationID, userID *binaryUUID) (*domain.Message, error) {
	var err error
	if row.id, err = id.uuid(); err != nil {
		return nil, err
	}
	if row.conversationID, err = conversationID.uuid(); err != nil {
		return nil, err
	}
	if row.userID, err = userID.nullUUID(); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}
