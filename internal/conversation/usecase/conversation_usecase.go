package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/chatseal/internal/conversation/domain"
	conversationService "github.com/allisson/chatseal/internal/conversation/service"
	"github.com/allisson/chatseal/internal/database"
	customValidation "github.com/allisson/chatseal/internal/validation"
)

const (
	maxTitleLength   = 500
	maxMessageLength = 100000
)

// conversationUseCase implements ConversationUseCase.
type conversationUseCase struct {
	txManager        database.TxManager
	conversationRepo ConversationRepository
	messageRepo      MessageRepository
	encryptor        conversationService.FieldEncryptor
	logger           *slog.Logger
	now              func() time.Time
}

// NewConversationUseCase creates a new ConversationUseCase.
func NewConversationUseCase(
	txManager database.TxManager,
	conversationRepo ConversationRepository,
	messageRepo MessageRepository,
	encryptor conversationService.FieldEncryptor,
	logger *slog.Logger,
) ConversationUseCase {
	return &conversationUseCase{
		txManager:        txManager,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		encryptor:        encryptor,
		logger:           logger,
		now:              time.Now,
	}
}

func (c *conversationUseCase) Create(
	ctx context.Context,
	input *domain.CreateConversationInput,
) (*domain.ConversationView, error) {
	if err := validateConversationContent(input.Title, input.CustomName); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	now := c.now().UTC()
	conversation := &domain.Conversation{
		ID:         uuid.Must(uuid.NewV7()),
		UserID:     input.UserID,
		Title:      input.Title,
		CustomName: input.CustomName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := c.encryptor.EncryptConversation(conversation); err != nil {
		return nil, err
	}

	if err := c.conversationRepo.Create(ctx, conversation); err != nil {
		return nil, err
	}

	return c.encryptor.ConversationView(conversation), nil
}

func (c *conversationUseCase) Get(
	ctx context.Context,
	callerID uuid.NullUUID,
	conversationID uuid.UUID,
) (*domain.ConversationView, error) {
	conversation, err := c.getOwned(ctx, callerID, conversationID)
	if err != nil {
		return nil, err
	}
	return c.encryptor.ConversationView(conversation), nil
}

func (c *conversationUseCase) Rename(
	ctx context.Context,
	callerID uuid.NullUUID,
	conversationID uuid.UUID,
	title, customName *string,
) (*domain.ConversationView, error) {
	if err := validateConversationContent(title, customName); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	var conversation *domain.Conversation
	err := c.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		conversation, err = c.getOwned(ctx, callerID, conversationID)
		if err != nil {
			return err
		}

		conversation.Title = title
		conversation.CustomName = customName
		conversation.EncryptedTitle = nil
		conversation.EncryptedCustomName = nil
		conversation.IsEncrypted = false
		conversation.UpdatedAt = c.now().UTC()

		if err := c.encryptor.EncryptConversation(conversation); err != nil {
			return err
		}
		return c.conversationRepo.UpdateContent(ctx, conversation)
	})
	if err != nil {
		return nil, err
	}

	return c.encryptor.ConversationView(conversation), nil
}

func (c *conversationUseCase) List(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*domain.ConversationView, error) {
	conversations, err := c.conversationRepo.ListByUserID(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	views := make([]*domain.ConversationView, 0, len(conversations))
	for _, conversation := range conversations {
		views = append(views, c.encryptor.ConversationView(conversation))
	}
	return views, nil
}

func (c *conversationUseCase) AddMessage(
	ctx context.Context,
	input *domain.AddMessageInput,
) (*domain.MessageView, error) {
	if err := validation.ValidateStruct(input,
		validation.Field(&input.Role, validation.Required, validation.In(
			domain.RoleUser, domain.RoleAssistant, domain.RoleSystem,
		)),
		validation.Field(&input.Text, validation.NotNil, customValidation.RuneLength(0, maxMessageLength)),
		validation.Field(&input.TranslatedText, customValidation.RuneLength(0, maxMessageLength)),
	); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	conversation, err := c.getOwned(ctx, input.UserID, input.ConversationID)
	if err != nil {
		return nil, err
	}

	message := &domain.Message{
		ID:             uuid.Must(uuid.NewV7()),
		ConversationID: conversation.ID,
		UserID:         conversation.UserID,
		Role:           input.Role,
		Text:           input.Text,
		TranslatedText: input.TranslatedText,
		CreatedAt:      c.now().UTC(),
	}

	if err := c.encryptor.EncryptMessage(message); err != nil {
		return nil, err
	}

	if err := c.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	return c.encryptor.MessageView(message), nil
}

func (c *conversationUseCase) UpdateMessage(
	ctx context.Context,
	input *domain.UpdateMessageInput,
) (*domain.MessageView, error) {
	if err := validation.ValidateStruct(input,
		validation.Field(&input.Text, validation.NotNil, customValidation.RuneLength(0, maxMessageLength)),
		validation.Field(&input.TranslatedText, customValidation.RuneLength(0, maxMessageLength)),
	); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	var message *domain.Message
	err := c.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		message, err = c.messageRepo.Get(ctx, input.MessageID)
		if err != nil {
			return err
		}
		if message.UserID != input.UserID {
			return domain.ErrMessageNotFound
		}

		message.Text = input.Text
		message.TranslatedText = input.TranslatedText
		message.EncryptedText = nil
		message.EncryptedTranslatedText = nil
		message.IsEncrypted = false

		if err := c.encryptor.EncryptMessage(message); err != nil {
			return err
		}
		return c.messageRepo.UpdateContent(ctx, message)
	})
	if err != nil {
		return nil, err
	}

	return c.encryptor.MessageView(message), nil
}

func (c *conversationUseCase) ListMessages(
	ctx context.Context,
	callerID uuid.NullUUID,
	conversationID uuid.UUID,
	offset, limit int,
) ([]*domain.MessageView, error) {
	if _, err := c.getOwned(ctx, callerID, conversationID); err != nil {
		return nil, err
	}

	messages, err := c.messageRepo.ListByConversationID(ctx, conversationID, offset, limit)
	if err != nil {
		return nil, err
	}

	views := make([]*domain.MessageView, 0, len(messages))
	for _, message := range messages {
		views = append(views, c.encryptor.MessageView(message))
	}
	return views, nil
}

// getOwned loads a conversation and hides it from anyone but its owner.
func (c *conversationUseCase) getOwned(
	ctx context.Context,
	callerID uuid.NullUUID,
	conversationID uuid.UUID,
) (*domain.Conversation, error) {
	conversation, err := c.conversationRepo.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation.UserID != callerID {
		return nil, domain.ErrConversationNotFound
	}
	return conversation, nil
}

func validateConversationContent(title, customName *string) error {
	return validation.Errors{
		"title":       validation.Validate(title, customValidation.RuneLength(0, maxTitleLength)),
		"custom_name": validation.Validate(customName, customValidation.RuneLength(0, maxTitleLength)),
	}.Filter()
}
