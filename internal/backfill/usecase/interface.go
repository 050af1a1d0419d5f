// Package usecase implements the one-off job that encrypts rows written before
// encryption at rest was enabled.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/chatseal/internal/backfill/domain"
	conversationDomain "github.com/allisson/chatseal/internal/conversation/domain"
)

// ConversationStore is the slice of the conversation repository the backfill needs.
type ConversationStore interface {
	// ListUnencryptedOwners returns the owners with plaintext rows; a null entry stands for guests.
	ListUnencryptedOwners(ctx context.Context) ([]uuid.NullUUID, error)

	// ListUnencrypted pages through an owner's plaintext rows by ascending id.
	ListUnencrypted(
		ctx context.Context,
		owner uuid.NullUUID,
		afterID uuid.UUID,
		limit int,
	) ([]*conversationDomain.Conversation, error)

	// MarkEncrypted writes the encrypted columns only if the row is still plaintext.
	MarkEncrypted(ctx context.Context, conversation *conversationDomain.Conversation) (bool, error)
}

// MessageStore is the slice of the message repository the backfill needs.
type MessageStore interface {
	ListUnencryptedOwners(ctx context.Context) ([]uuid.NullUUID, error)

	ListUnencrypted(
		ctx context.Context,
		owner uuid.NullUUID,
		afterID uuid.UUID,
		limit int,
	) ([]*conversationDomain.Message, error)

	MarkEncrypted(ctx context.Context, message *conversationDomain.Message) (bool, error)
}

// BackfillUseCase encrypts every plaintext conversation and message.
//
// Each owner's rows are processed to completion by a single goroutine.
// Rows that fail are reported and left untouched; a second run over a fully
// encrypted database modifies nothing.
type BackfillUseCase interface {
	Migrate(ctx context.Context) (*domain.Report, error)
}
