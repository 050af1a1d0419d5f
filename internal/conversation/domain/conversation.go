// Package domain defines conversations, messages and the read views returned to callers.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/chatseal/internal/crypto/domain"
)

const (
	// GuestKeyID is the key id used for content that has no owning user.
	GuestKeyID = "guest"

	// MaskedPlaceholder replaces every content field shown to an admin
	// without a live grant from the owner.
	MaskedPlaceholder = "[encrypted: admin access not authorized]"

	// UndecryptablePlaceholder replaces a field whose record fails to decrypt.
	UndecryptablePlaceholder = "[unable to decrypt]"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation is a chat thread. UserID is null for guest conversations.
//
// When IsEncrypted is set, EncryptedTitle and EncryptedCustomName are
// authoritative and the plaintext fields are empty.
type Conversation struct {
	ID                  uuid.UUID
	UserID              uuid.NullUUID
	Title               *string
	CustomName          *string
	EncryptedTitle      *cryptoDomain.EncryptedRecord
	EncryptedCustomName *cryptoDomain.EncryptedRecord
	IsEncrypted         bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// KeyID returns the id the conversation's content is encrypted for.
func (c *Conversation) KeyID() string {
	return keyID(c.UserID)
}

// IsGuest reports whether the conversation has no owner.
func (c *Conversation) IsGuest() bool {
	return !c.UserID.Valid
}

// OwnedBy reports whether userID owns the conversation.
func (c *Conversation) OwnedBy(userID uuid.UUID) bool {
	return c.UserID.Valid && c.UserID.UUID == userID
}

// Corruption returns the decode error of the first encrypted field whose
// stored columns could not be read, or nil.
func (c *Conversation) Corruption() error {
	return firstCorruption(c.EncryptedTitle, c.EncryptedCustomName)
}

// Message is one entry of a conversation. UserID is copied from the
// conversation so each row carries the id its content is encrypted for.
type Message struct {
	ID                      uuid.UUID
	ConversationID          uuid.UUID
	UserID                  uuid.NullUUID
	Role                    string
	Text                    *string
	TranslatedText          *string
	EncryptedText           *cryptoDomain.EncryptedRecord
	EncryptedTranslatedText *cryptoDomain.EncryptedRecord
	IsEncrypted             bool
	CreatedAt               time.Time
}

// KeyID returns the id the message's content is encrypted for.
func (m *Message) KeyID() string {
	return keyID(m.UserID)
}

// IsGuest reports whether the message has no owner.
func (m *Message) IsGuest() bool {
	return !m.UserID.Valid
}

// Corruption is Conversation.Corruption for messages.
func (m *Message) Corruption() error {
	return firstCorruption(m.EncryptedText, m.EncryptedTranslatedText)
}

func firstCorruption(records ...*cryptoDomain.EncryptedRecord) error {
	for _, record := range records {
		if err := record.Corruption(); err != nil {
			return err
		}
	}
	return nil
}

func keyID(userID uuid.NullUUID) string {
	if !userID.Valid {
		return GuestKeyID
	}
	return userID.UUID.String()
}

// ConversationView is a conversation with its content resolved for display.
type ConversationView struct {
	ID          uuid.UUID
	UserID      uuid.NullUUID
	Title       *string
	CustomName  *string
	IsEncrypted bool
	Masked      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MessageView is a message with its content resolved for display.
type MessageView struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Role           string
	Text           *string
	TranslatedText *string
	IsEncrypted    bool
	Masked         bool
	CreatedAt      time.Time
}

// CreateConversationInput contains the parameters for starting a conversation.
type CreateConversationInput struct {
	UserID     uuid.NullUUID
	Title      *string
	CustomName *string
}

// AddMessageInput contains the parameters for appending a message.
type AddMessageInput struct {
	UserID         uuid.NullUUID
	ConversationID uuid.UUID
	Role           string
	Text           *string
	TranslatedText *string
}

// UpdateMessageInput replaces the content of a message.
type UpdateMessageInput struct {
	UserID         uuid.NullUUID
	MessageID      uuid.UUID
	Text           *string
	TranslatedText *string
}
