package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/chatseal/internal/conversation/domain"
	cryptoDomain "github.com/allisson/chatseal/internal/crypto/domain"

	apperrors "github.com/allisson/chatseal/internal/errors"
)

const conversationColumns = `id, user_id, title, custom_name,
	title_ciphertext, title_iv, title_auth_tag, title_key_salt,
	custom_name_ciphertext, custom_name_iv, custom_name_auth_tag, custom_name_key_salt,
	is_encrypted, created_at, updated_at`

const messageColumns = `id, conversation_id, user_id, role, text, translated_text,
	text_ciphertext, text_iv, text_auth_tag, text_key_salt,
	translated_text_ciphertext, translated_text_iv, translated_text_auth_tag, translated_text_key_salt,
	is_encrypted, created_at`

// conversationRow is the scan target shared by both dialects. The id
// destinations are passed in so MySQL can scan binary UUIDs.
type conversationRow struct {
	id             uuid.UUID
	userID         uuid.NullUUID
	title          sql.NullString
	customName     sql.NullString
	titleCols      cryptoDomain.EncryptedColumns
	customNameCols cryptoDomain.EncryptedColumns
	isEncrypted    bool
	createdAt      time.Time
	updatedAt      time.Time
}

func (r *conversationRow) scanTargets(id, userID any) []any {
	return []any{
		id,
		userID,
		&r.title,
		&r.customName,
		&r.titleCols.Ciphertext,
		&r.titleCols.IV,
		&r.titleCols.AuthTag,
		&r.titleCols.KeySalt,
		&r.customNameCols.Ciphertext,
		&r.customNameCols.IV,
		&r.customNameCols.AuthTag,
		&r.customNameCols.KeySalt,
		&r.isEncrypted,
		&r.createdAt,
		&r.updatedAt,
	}
}

// toDomain keeps rows whose encrypted columns are damaged; the damaged
// field carries a corrupt record so one bad row never fails a listing.
func (r *conversationRow) toDomain() *domain.Conversation {
	return &domain.Conversation{
		ID:                  r.id,
		UserID:              r.userID,
		Title:               nullStringPtr(r.title),
		CustomName:          nullStringPtr(r.customName),
		EncryptedTitle:      decodeRecord(r.titleCols),
		EncryptedCustomName: decodeRecord(r.customNameCols),
		IsEncrypted:         r.isEncrypted,
		CreatedAt:           r.createdAt,
		UpdatedAt:           r.updatedAt,
	}
}

// conversationContentArgs returns the content columns in the order
// title, custom_name, title_*, custom_name_*, is_encrypted.
func conversationContentArgs(c *domain.Conversation) []any {
	title := c.EncryptedTitle.EncodeHex()
	customName := c.EncryptedCustomName.EncodeHex()
	return []any{
		nullString(c.Title),
		nullString(c.CustomName),
		title.Ciphertext, title.IV, title.AuthTag, title.KeySalt,
		customName.Ciphertext, customName.IV, customName.AuthTag, customName.KeySalt,
		c.IsEncrypted,
	}
}

type messageRow struct {
	id                 uuid.UUID
	conversationID     uuid.UUID
	userID             uuid.NullUUID
	role               string
	text               sql.NullString
	translatedText     sql.NullString
	textCols           cryptoDomain.EncryptedColumns
	translatedTextCols cryptoDomain.EncryptedColumns
	isEncrypted        bool
	createdAt          time.Time
}

func (r *messageRow) scanTargets(id, conversationID, userID any) []any {
	return []any{
		id,
		conversationID,
		userID,
		&r.role,
		&r.text,
		&r.translatedText,
		&r.textCols.Ciphertext,
		&r.textCols.IV,
		&r.textCols.AuthTag,
		&r.textCols.KeySalt,
		&r.translatedTextCols.Ciphertext,
		&r.translatedTextCols.IV,
		&r.translatedTextCols.AuthTag,
		&r.translatedTextCols.KeySalt,
		&r.isEncrypted,
		&r.createdAt,
	}
}

func (r *messageRow) toDomain() *domain.Message {
	return &domain.Message{
		ID:                      r.id,
		ConversationID:          r.conversationID,
		UserID:                  r.userID,
		Role:                    r.role,
		Text:                    nullStringPtr(r.text),
		TranslatedText:          nullStringPtr(r.translatedText),
		EncryptedText:           decodeRecord(r.textCols),
		EncryptedTranslatedText: decodeRecord(r.translatedTextCols),
		IsEncrypted:             r.isEncrypted,
		CreatedAt:               r.createdAt,
	}
}

func decodeRecord(cols cryptoDomain.EncryptedColumns) *cryptoDomain.EncryptedRecord {
	record, err := cryptoDomain.DecodeEncryptedColumns(cols)
	if err != nil {
		return cryptoDomain.CorruptRecord(err)
	}
	return record
}

// messageContentArgs returns the content columns in the order
// text, translated_text, text_*, translated_text_*, is_encrypted.
func messageContentArgs(m *domain.Message) []any {
	text := m.EncryptedText.EncodeHex()
	translatedText := m.EncryptedTranslatedText.EncodeHex()
	return []any{
		nullString(m.Text),
		nullString(m.TranslatedText),
		text.Ciphertext, text.IV, text.AuthTag, text.KeySalt,
		translatedText.Ciphertext, translatedText.IV, translatedText.AuthTag, translatedText.KeySalt,
		m.IsEncrypted,
	}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// binaryUUID scans a nullable BINARY(16) column.
type binaryUUID struct {
	raw []byte
}

func (b *binaryUUID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		b.raw = nil
	case []byte:
		b.raw = append(b.raw[:0], v...)
	default:
		return apperrors.Wrap(apperrors.ErrInvalidInput, "unexpected uuid column type")
	}
	return nil
}

func (b *binaryUUID) uuid() (uuid.UUID, error) {
	var id uuid.UUID
	if err := id.UnmarshalBinary(b.raw); err != nil {
		return uuid.Nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	return id, nil
}

func (b *binaryUUID) nullUUID() (uuid.NullUUID, error) {
	if b.raw == nil {
		return uuid.NullUUID{}, nil
	}
	id, err := b.uuid()
	if err != nil {
		return uuid.NullUUID{}, err
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

func marshalUUID(id uuid.UUID) ([]byte, error) {
	b, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}
	return b, nil
}

// marshalNullUUID returns nil for a null id so the driver writes NULL.
func marshalNullUUID(id uuid.NullUUID) (any, error) {
	if !id.Valid {
		return nil, nil
	}
	return marshalUUID(id.UUID)
}
