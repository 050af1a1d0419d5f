// Package usecase implements the conversation read and write paths for owners and admins.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/chatseal/internal/conversation/domain"
)

// ConversationRepository defines conversation persistence operations.
// Implementations must support transaction-aware operations via context propagation.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) error

	// Get returns ErrConversationNotFound if no conversation matches.
	Get(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)

	// UpdateContent replaces the plaintext and encrypted content columns and the IsEncrypted flag.
	UpdateContent(ctx context.Context, conversation *domain.Conversation) error

	// ListByUserID lists the conversations owned by userID, newest first.
	ListByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.Conversation, error)
}

// MessageRepository defines message persistence operations.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error

	// Get returns ErrMessageNotFound if no message matches.
	Get(ctx context.Context, id uuid.UUID) (*domain.Message, error)

	// UpdateContent replaces the plaintext and encrypted content columns and the IsEncrypted flag.
	UpdateContent(ctx context.Context, message *domain.Message) error

	// ListByConversationID lists the messages of a conversation, oldest first.
	ListByConversationID(
		ctx context.Context,
		conversationID uuid.UUID,
		offset, limit int,
	) ([]*domain.Message, error)
}

// AdminAccessChecker reports whether admins may currently read a user's content.
type AdminAccessChecker interface {
	CheckAuthorization(ctx context.Context, userID uuid.UUID) (bool, error)
}

// ConversationUseCase is the owner read and write path. Content is encrypted
// before it reaches a repository and decrypted on the way out.
//
// callerID is the owner of the conversation, or null for guest content.
// A conversation that belongs to someone else reads as not found.
type ConversationUseCase interface {
	Create(ctx context.Context, input *domain.CreateConversationInput) (*domain.ConversationView, error)

	Get(ctx context.Context, callerID uuid.NullUUID, conversationID uuid.UUID) (*domain.ConversationView, error)

	// Rename replaces the title and custom name. Each edit produces new
	// encrypted records; a nil value clears the field.
	Rename(
		ctx context.Context,
		callerID uuid.NullUUID,
		conversationID uuid.UUID,
		title, customName *string,
	) (*domain.ConversationView, error)

	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.ConversationView, error)

	AddMessage(ctx context.Context, input *domain.AddMessageInput) (*domain.MessageView, error)

	// UpdateMessage replaces the text and translated text of a message.
	UpdateMessage(ctx context.Context, input *domain.UpdateMessageInput) (*domain.MessageView, error)

	ListMessages(
		ctx context.Context,
		callerID uuid.NullUUID,
		conversationID uuid.UUID,
		offset, limit int,
	) ([]*domain.MessageView, error)
}

// AdminReadUseCase is the only path through which an admin sees user content.
// Every call checks the owner's grant first; without one every content field
// is masked. Guest content has no owner to grant access and is always masked.
type AdminReadUseCase interface {
	ListUserConversations(
		ctx context.Context,
		adminID, userID uuid.UUID,
		offset, limit int,
	) ([]*domain.ConversationView, error)

	ListConversationMessages(
		ctx context.Context,
		adminID, conversationID uuid.UUID,
		offset, limit int,
	) ([]*domain.MessageView, error)
}
