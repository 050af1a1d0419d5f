package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/chatseal/internal/conversation/domain"
)

func newEncryptedMessage() *domain.Message {
	return &domain.Message{
		ID:                      uuid.Must(uuid.NewV7()),
		ConversationID:          uuid.Must(uuid.NewV7()),
		UserID:                  uuid.NullUUID{UUID: uuid.Must(uuid.NewV7()), Valid: true},
		Role:                    domain.RoleAssistant,
		EncryptedText:           newTestRecord(10),
		EncryptedTranslatedText: newTestRecord(20),
		IsEncrypted:             true,
		CreatedAt:               time.Now().UTC().Truncate(time.Second),
	}
}

func messageRowValues(m *domain.Message, id, conversationID, userID any) []any {
	values := []any{id, conversationID, userID, m.Role, nullValue(m.Text), nullValue(m.TranslatedText)}
	values = append(values, encryptedColumnValues(m.EncryptedText)...)
	values = append(values, encryptedColumnValues(m.EncryptedTranslatedText)...)
	return append(values, m.IsEncrypted, m.CreatedAt)
}

func postgresMessageRow(m *domain.Message) []any {
	var userID any
	if m.UserID.Valid {
		userID = m.UserID.UUID.String()
	}
	return messageRowValues(m, m.ID.String(), m.ConversationID.String(), userID)
}

func newPostgresMessageMock(t *testing.T) (*PostgreSQLMessageRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgreSQLMessageRepository(db), mock
}

func TestPostgreSQLMessageRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo, mock := newPostgresMessageMock(t)
	message := newEncryptedMessage()
	text := message.EncryptedText.EncodeHex()
	translated := message.EncryptedTranslatedText.EncodeHex()

	mock.ExpectExec("INSERT INTO messages").
		WithArgs(
			message.ID, message.ConversationID, message.UserID, message.Role, nil, nil,
			text.Ciphertext.String, text.IV.String, text.AuthTag.String, text.KeySalt.String,
			translated.Ciphertext.String, translated.IV.String, translated.AuthTag.String, translated.KeySalt.String,
			true, message.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Create(ctx, message))
}

func TestPostgreSQLMessageRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mock := newPostgresMessageMock(t)
		message := newEncryptedMessage()
		rows := sqlmock.NewRows(messageColumnNames).AddRow(toDriverValues(postgresMessageRow(message))...)
		mock.ExpectQuery("SELECT (.+) FROM messages WHERE id = \\$1").WithArgs(message.ID).WillReturnRows(rows)

		got, err := repo.Get(ctx, message.ID)
		require.NoError(t, err)
		assert.Equal(t, message.ConversationID, got.ConversationID)
		assert.Equal(t, message.UserID, got.UserID)
		assert.Equal(t, domain.RoleAssistant, got.Role)
		assert.True(t, message.EncryptedText.Equal(got.EncryptedText))
		assert.True(t, message.EncryptedTranslatedText.Equal(got.EncryptedTranslatedText))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		repo, mock := newPostgresMessageMock(t)
		id := uuid.Must(uuid.NewV7())
		mock.ExpectQuery("SELECT (.+) FROM messages").WithArgs(id).WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, id)
		assert.ErrorIs(t, err, domain.ErrMessageNotFound)
	})
}

func TestPostgreSQLMessageRepository_UpdateContent(t *testing.T) {
	ctx := context.Background()
	message := newEncryptedMessage()

	t.Run("Success", func(t *testing.T) {
		repo, mock := newPostgresMessageMock(t)
		mock.ExpectExec("UPDATE messages (.+) WHERE id = \\$12").WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateContent(ctx, message))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		repo, mock := newPostgresMessageMock(t)
		mock.ExpectExec("UPDATE messages").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateContent(ctx, message), domain.ErrMessageNotFound)
	})
}

func TestPostgreSQLMessageRepository_ListByConversationID(t *testing.T) {
	ctx := context.Background()
	repo, mock := newPostgresMessageMock(t)
	message := newEncryptedMessage()

	rows := sqlmock.NewRows(messageColumnNames).AddRow(toDriverValues(postgresMessageRow(message))...)
	mock.ExpectQuery("WHERE conversation_id = \\$1 ORDER BY created_at ASC, id ASC LIMIT \\$2 OFFSET \\$3").
		WithArgs(message.ConversationID, 20, 40).
		WillReturnRows(rows)

	messages, err := repo.ListByConversationID(ctx, message.ConversationID, 40, 20)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, message.ID, messages[0].ID)
}

func TestPostgreSQLMessageRepository_ListByConversationID_CorruptRow(t *testing.T) {
	ctx := context.Background()
	repo, mock := newPostgresMessageMock(t)
	good := newEncryptedMessage()
	damaged := newEncryptedMessage()
	damaged.ConversationID = good.ConversationID

	values := postgresMessageRow(damaged)
	values[6] = "not-hex"
	rows := sqlmock.NewRows(messageColumnNames).
		AddRow(toDriverValues(postgresMessageRow(good))...).
		AddRow(toDriverValues(values)...)
	mock.ExpectQuery("WHERE conversation_id = \\$1").
		WithArgs(good.ConversationID, 50, 0).
		WillReturnRows(rows)

	messages, err := repo.ListByConversationID(ctx, good.ConversationID, 0, 50)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.NoError(t, messages[0].Corruption())
	assert.Error(t, messages[1].Corruption())
	assert.Nil(t, messages[1].EncryptedTranslatedText.Corruption())
}

func TestPostgreSQLMessageRepository_Backfill(t *testing.T) {
	ctx := context.Background()

	t.Run("ListUnencrypted_Guest", func(t *testing.T) {
		repo, mock := newPostgresMessageMock(t)
		text := "plain"
		message := &domain.Message{
			ID:             uuid.Must(uuid.NewV7()),
			ConversationID: uuid.Must(uuid.NewV7()),
			Role:           domain.RoleUser,
			Text:           &text,
			CreatedAt:      time.Now().UTC(),
		}
		rows := sqlmock.NewRows(messageColumnNames).AddRow(toDriverValues(postgresMessageRow(message))...)
		mock.ExpectQuery("WHERE user_id IS NULL AND is_encrypted = false AND id > \\$1").
			WithArgs(uuid.Nil, 5).
			WillReturnRows(rows)

		messages, err := repo.ListUnencrypted(ctx, uuid.NullUUID{}, uuid.Nil, 5)
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.True(t, messages[0].IsGuest())
		assert.Equal(t, "plain", *messages[0].Text)
	})

	t.Run("MarkEncrypted_AlreadyEncrypted", func(t *testing.T) {
		repo, mock := newPostgresMessageMock(t)
		message := newEncryptedMessage()
		mock.ExpectExec("UPDATE messages (.+) WHERE id = \\$9 AND is_encrypted = false").
			WillReturnResult(sqlmock.NewResult(0, 0))

		updated, err := repo.MarkEncrypted(ctx, message)
		require.NoError(t, err)
		assert.False(t, updated)
	})
}
