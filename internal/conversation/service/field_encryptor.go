// Package service applies field encryption to conversations and messages.
package service

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/allisson/chatseal/internal/conversation/domain"
	cryptoDomain "github.com/allisson/chatseal/internal/crypto/domain"
	cryptoService "github.com/allisson/chatseal/internal/crypto/service"
)

// FieldEncryptor decides which fields of a conversation or message are
// encrypted and resolves them back for display. It holds no key material.
//
// Designated fields: conversation title and custom name, message text and
// translated text.
type FieldEncryptor interface {
	// ShouldEncrypt reports whether content owned by userID is encrypted.
	// Ownerless content follows the guest policy.
	ShouldEncrypt(userID uuid.NullUUID) bool

	// EncryptConversation encrypts every non-null designated field, clears
	// the plaintext and sets IsEncrypted. It leaves the conversation
	// untouched when it is already encrypted, when ShouldEncrypt is false or
	// when any field fails to encrypt. A conversation carrying corrupt stored
	// records is rejected with ErrCorruptEncryptedColumns.
	EncryptConversation(conversation *domain.Conversation) error

	// EncryptMessage is EncryptConversation for messages.
	EncryptMessage(message *domain.Message) error

	// ConversationView decrypts the conversation for its owner or an
	// authorized admin. A field that fails to decrypt reads as
	// UndecryptablePlaceholder.
	ConversationView(conversation *domain.Conversation) *domain.ConversationView

	// MessageView decrypts the message for its owner or an authorized admin.
	MessageView(message *domain.Message) *domain.MessageView

	// MaskedConversationView hides every content field behind MaskedPlaceholder.
	MaskedConversationView(conversation *domain.Conversation) *domain.ConversationView

	// MaskedMessageView hides every content field behind MaskedPlaceholder.
	MaskedMessageView(message *domain.Message) *domain.MessageView
}

type fieldEncryptor struct {
	cipher       cryptoService.FieldCipher
	encryptGuest bool
	logger       *slog.Logger
}

// NewFieldEncryptor creates a FieldEncryptor. encryptGuest selects whether
// ownerless content is encrypted under the guest key or kept in plaintext.
func NewFieldEncryptor(cipher cryptoService.FieldCipher, encryptGuest bool, logger *slog.Logger) FieldEncryptor {
	return &fieldEncryptor{
		cipher:       cipher,
		encryptGuest: encryptGuest,
		logger:       logger,
	}
}

func (f *fieldEncryptor) ShouldEncrypt(userID uuid.NullUUID) bool {
	return userID.Valid || f.encryptGuest
}

func (f *fieldEncryptor) EncryptConversation(conversation *domain.Conversation) error {
	if conversation.IsEncrypted || !f.ShouldEncrypt(conversation.UserID) {
		return nil
	}
	if err := conversation.Corruption(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCorruptEncryptedColumns, err)
	}

	keyID := conversation.KeyID()
	title, err := f.encryptField(conversation.Title, keyID)
	if err != nil {
		return err
	}
	customName, err := f.encryptField(conversation.CustomName, keyID)
	if err != nil {
		return err
	}

	conversation.EncryptedTitle = title
	conversation.EncryptedCustomName = customName
	conversation.Title = nil
	conversation.CustomName = nil
	conversation.IsEncrypted = true
	return nil
}

func (f *fieldEncryptor) EncryptMessage(message *domain.Message) error {
	if message.IsEncrypted || !f.ShouldEncrypt(message.UserID) {
		return nil
	}
	if err := message.Corruption(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCorruptEncryptedColumns, err)
	}

	keyID := message.KeyID()
	text, err := f.encryptField(message.Text, keyID)
	if err != nil {
		return err
	}
	translated, err := f.encryptField(message.TranslatedText, keyID)
	if err != nil {
		return err
	}

	message.EncryptedText = text
	message.EncryptedTranslatedText = translated
	message.Text = nil
	message.TranslatedText = nil
	message.IsEncrypted = true
	return nil
}

func (f *fieldEncryptor) ConversationView(conversation *domain.Conversation) *domain.ConversationView {
	view := &domain.ConversationView{
		ID:          conversation.ID,
		UserID:      conversation.UserID,
		IsEncrypted: conversation.IsEncrypted,
		CreatedAt:   conversation.CreatedAt,
		UpdatedAt:   conversation.UpdatedAt,
	}

	if !conversation.IsEncrypted {
		view.Title = conversation.Title
		view.CustomName = conversation.CustomName
		return view
	}

	keyID := conversation.KeyID()
	view.Title = f.decryptField(conversation.EncryptedTitle, keyID, "conversation", conversation.ID, "title")
	view.CustomName = f.decryptField(
		conversation.EncryptedCustomName,
		keyID,
		"conversation",
		conversation.ID,
		"custom_name",
	)
	return view
}

func (f *fieldEncryptor) MessageView(message *domain.Message) *domain.MessageView {
	view := &domain.MessageView{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		Role:           message.Role,
		IsEncrypted:    message.IsEncrypted,
		CreatedAt:      message.CreatedAt,
	}

	if !message.IsEncrypted {
		view.Text = message.Text
		view.TranslatedText = message.TranslatedText
		return view
	}

	keyID := message.KeyID()
	view.Text = f.decryptField(message.EncryptedText, keyID, "message", message.ID, "text")
	view.TranslatedText = f.decryptField(
		message.EncryptedTranslatedText,
		keyID,
		"message",
		message.ID,
		"translated_text",
	)
	return view
}

func (f *fieldEncryptor) MaskedConversationView(conversation *domain.Conversation) *domain.ConversationView {
	return &domain.ConversationView{
		ID:          conversation.ID,
		UserID:      conversation.UserID,
		Title:       masked(),
		CustomName:  masked(),
		IsEncrypted: conversation.IsEncrypted,
		Masked:      true,
		CreatedAt:   conversation.CreatedAt,
		UpdatedAt:   conversation.UpdatedAt,
	}
}

func (f *fieldEncryptor) MaskedMessageView(message *domain.Message) *domain.MessageView {
	return &domain.MessageView{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		Role:           message.Role,
		Text:           masked(),
		TranslatedText: masked(),
		IsEncrypted:    message.IsEncrypted,
		Masked:         true,
		CreatedAt:      message.CreatedAt,
	}
}

func (f *fieldEncryptor) encryptField(value *string, keyID string) (*cryptoDomain.EncryptedRecord, error) {
	if value == nil {
		return nil, nil
	}
	return f.cipher.Encrypt(*value, keyID)
}

// decryptField never fails: errors are logged by row and field only.
func (f *fieldEncryptor) decryptField(
	record *cryptoDomain.EncryptedRecord,
	keyID string,
	entity string,
	id uuid.UUID,
	field string,
) *string {
	if record == nil {
		return nil
	}

	plaintext, err := f.cipher.Decrypt(record, keyID)
	if err != nil {
		f.logger.Debug("field decryption failed",
			slog.String("entity", entity),
			slog.String("id", id.String()),
			slog.String("field", field),
		)
		placeholder := domain.UndecryptablePlaceholder
		return &placeholder
	}
	return &plaintext
}

func masked() *string {
	s := domain.MaskedPlaceholder
	return &s
}
