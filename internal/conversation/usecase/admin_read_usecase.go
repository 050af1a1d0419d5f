package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/allisson/chatseal/internal/conversation/domain"
	conversationService "github.com/allisson/chatseal/internal/conversation/service"
)

// adminReadUseCase implements AdminReadUseCase.
type adminReadUseCase struct {
	conversationRepo ConversationRepository
	messageRepo      MessageRepository
	accessChecker    AdminAccessChecker
	encryptor        conversationService.FieldEncryptor
	logger           *slog.Logger
}

// NewAdminReadUseCase creates a new AdminReadUseCase.
func NewAdminReadUseCase(
	conversationRepo ConversationRepository,
	messageRepo MessageRepository,
	accessChecker AdminAccessChecker,
	encryptor conversationService.FieldEncryptor,
	logger *slog.Logger,
) AdminReadUseCase {
	return &adminReadUseCase{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		accessChecker:    accessChecker,
		encryptor:        encryptor,
		logger:           logger,
	}
}

// ListUserConversations lists a user's conversations for an admin.
// Returns ErrUserNotFound for unknown users.
func (a *adminReadUseCase) ListUserConversations(
	ctx context.Context,
	adminID, userID uuid.UUID,
	offset, limit int,
) ([]*domain.ConversationView, error) {
	authorized, err := a.accessChecker.CheckAuthorization(ctx, userID)
	if err != nil {
		return nil, err
	}

	conversations, err := a.conversationRepo.ListByUserID(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	a.logRead(adminID, userID.String(), "conversations", authorized, len(conversations))

	views := make([]*domain.ConversationView, 0, len(conversations))
	for _, conversation := range conversations {
		if authorized {
			views = append(views, a.encryptor.ConversationView(conversation))
		} else {
			views = append(views, a.encryptor.MaskedConversationView(conversation))
		}
	}
	return views, nil
}

// ListConversationMessages lists the messages of any conversation for an admin.
func (a *adminReadUseCase) ListConversationMessages(
	ctx context.Context,
	adminID, conversationID uuid.UUID,
	offset, limit int,
) ([]*domain.MessageView, error) {
	conversation, err := a.conversationRepo.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	authorized := false
	if !conversation.IsGuest() {
		authorized, err = a.accessChecker.CheckAuthorization(ctx, conversation.UserID.UUID)
		if err != nil {
			return nil, err
		}
	}

	messages, err := a.messageRepo.ListByConversationID(ctx, conversationID, offset, limit)
	if err != nil {
		return nil, err
	}

	a.logRead(adminID, conversation.KeyID(), "messages", authorized, len(messages))

	views := make([]*domain.MessageView, 0, len(messages))
	for _, message := range messages {
		if authorized {
			views = append(views, a.encryptor.MessageView(message))
		} else {
			views = append(views, a.encryptor.MaskedMessageView(message))
		}
	}
	return views, nil
}

func (a *adminReadUseCase) logRead(adminID uuid.UUID, owner, resource string, authorized bool, count int) {
	a.logger.Info("admin content read",
		slog.String("admin_id", adminID.String()),
		slog.String("owner", owner),
		slog.String("resource", resource),
		slog.Bool("authorized", authorized),
		slog.Int("count", count),
	)
}
