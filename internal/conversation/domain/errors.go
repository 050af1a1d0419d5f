package domain

import (
	"github.com/allisson/chatseal/internal/errors"
)

// Conversation errors.
var (
	// ErrConversationNotFound indicates the conversation does not exist or is
	// not visible to the caller.
	ErrConversationNotFound = errors.Wrap(errors.ErrNotFound, "conversation not found")

	// ErrMessageNotFound indicates the message does not exist or is not visible to the caller.
	ErrMessageNotFound = errors.Wrap(errors.ErrNotFound, "message not found")

	// ErrConcurrentEncryption indicates a row was encrypted by another writer
	// between being read and being updated.
	ErrConcurrentEncryption = errors.Wrap(errors.ErrConflict, "row already encrypted")

	// ErrCorruptEncryptedColumns indicates a row's stored encrypted columns
	// cannot be decoded, so encrypting it would overwrite them.
	ErrCorruptEncryptedColumns = errors.Wrap(errors.ErrConflict, "stored encrypted columns are corrupt")
)
