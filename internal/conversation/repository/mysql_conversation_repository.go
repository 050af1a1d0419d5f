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

// MySQLConversationRepository handles conversation persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLConversationRepository struct {
	db *sql.DB
}

// NewMySQLConversationRepository creates a new MySQLConversationRepository.
func NewMySQLConversationRepository(db *sql.DB) *MySQLConversationRepository {
	return &MySQLConversationRepository{db: db}
}

// Create inserts a new conversation.
func (r *MySQLConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO conversations (` + conversationColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := marshalUUID(conversation.ID)
	if err != nil {
		return err
	}
	userID, err := marshalNullUUID(conversation.UserID)
	if err != nil {
		return err
	}

	args := []any{id, userID}
	args = append(args, conversationContentArgs(conversation)...)
	args = append(args, conversation.CreatedAt, conversation.UpdatedAt)

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Wrap(err, "failed to create conversation")
	}
	return nil
}

// Get retrieves a conversation by ID.
func (r *MySQLConversationRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = ?`

	idBytes, err := marshalUUID(id)
	if err != nil {
		return nil, err
	}

	var row conversationRow
	var rowID, userID binaryUUID
	err = querier.QueryRowContext(ctx, query, idBytes).Scan(row.scanTargets(&rowID, &userID)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get conversation")
	}

	return mysqlConversation(&row, &rowID, &userID)
}

// UpdateContent replaces the content columns and bumps updated_at. The row
// is loaded in the same transaction, so MySQL's changed-rows count is not
// used to detect a missing row.
func (r *MySQLConversationRepository) UpdateContent(ctx context.Context, conversation *domain.Conversation) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE conversations
			  SET title = ?, custom_name = ?,
			      title_ciphertext = ?, title_iv = ?, title_auth_tag = ?, title_key_salt = ?,
			      custom_name_ciphertext = ?, custom_name_iv = ?, custom_name_auth_tag = ?,
			      custom_name_key_salt = ?, is_encrypted = ?, updated_at = ?
			  WHERE id = ?`

	id, err := marshalUUID(conversation.ID)
	if err != nil {
		return err
	}

	args := conversationContentArgs(conversation)
	args = append(args, conversation.UpdatedAt, id)

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Wrap(err, "failed to update conversation")
	}
	return nil
}

// ListByUserID lists the conversations owned by userID, most recently updated first.
func (r *MySQLConversationRepository) ListByUserID(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations
			  WHERE user_id = ?
			  ORDER BY updated_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	userBytes, err := marshalUUID(userID)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, query, userBytes, limit, offset)
}

// ListUnencryptedOwners returns every owner with at least one plaintext
// conversation. A null entry stands for guest conversations.
func (r *MySQLConversationRepository) ListUnencryptedOwners(ctx context.Context) ([]uuid.NullUUID, error) {
	return listMySQLOwners(ctx, database.GetTx(ctx, r.db),
		`SELECT DISTINCT user_id FROM conversations WHERE is_encrypted = false`)
}

// ListUnencrypted returns up to limit plaintext conversations of owner with
// an id greater than afterID, ordered by id.
func (r *MySQLConversationRepository) ListUnencrypted(
	ctx context.Context,
	owner uuid.NullUUID,
	afterID uuid.UUID,
	limit int,
) ([]*domain.Conversation, error) {
	after, err := marshalUUID(afterID)
	if err != nil {
		return nil, err
	}

	if !owner.Valid {
		query := `SELECT ` + conversationColumns + ` FROM conversations
				  WHERE user_id IS NULL AND is_encrypted = false AND id > ?
				  ORDER BY id
				  LIMIT ?`
		return r.list(ctx, query, after, limit)
	}

	ownerBytes, err := marshalUUID(owner.UUID)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + conversationColumns + ` FROM conversations
			  WHERE user_id = ? AND is_encrypted = false AND id > ?
			  ORDER BY id
			  LIMIT ?`
	return r.list(ctx, query, ownerBytes, after, limit)
}

// MarkEncrypted stores the encrypted content of a conversation that is still
// plaintext. It reports false when another writer encrypted the row first.
func (r *MySQLConversationRepository) MarkEncrypted(
	ctx context.Context,
	conversation *domain.Conversation,
) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE conversations
			  SET title = NULL, custom_name = NULL,
			      title_ciphertext = ?, title_iv = ?, title_auth_tag = ?, title_key_salt = ?,
			      custom_name_ciphertext = ?, custom_name_iv = ?, custom_name_auth_tag = ?,
			      custom_name_key_salt = ?, is_encrypted = true
			  WHERE id = ? AND is_encrypted = false`

	id, err := marshalUUID(conversation.ID)
	if err != nil {
		return false, err
	}

	args := conversationContentArgs(conversation)[2:10]
	args = append(args, id)

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

func (r *MySQLConversationRepository) list(
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
		var rowID, userID binaryUUID
		if err := rows.Scan(row.scanTargets(&rowID, &userID)...); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan conversation")
		}
		conversation, err := mysqlConversation(&row, &rowID, &userID)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conversation)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate conversations")
	}
	return conversations, nil
}

func mysqlConversation(row *conversationRow, id, userID *binaryUUID) (*domain.Conversation, error) {
	var err error
	if row.id, err = id.uuid(); err != nil {
		return nil, err
	}
	if row.userID, err = userID.nullUUID(); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func listMySQLOwners(ctx context.Context, querier database.Querier, query string) ([]uuid.NullUUID, error) {
	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list unencrypted owners")
	}
	defer func() {
		_ = rows.Close()
	}()

	var owners []uuid.NullUUID
	for rows.Next() {
		var raw binaryUUID
		if err := rows.Scan(&raw); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan owner")
		}
		owner, err := raw.nullUUID()
		if err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate owners")
	}
	return owners, nil
}
