package app

import (
	"fmt"

	backfillUseCase "github.com/allisson/chatseal/internal/backfill/usecase"
	conversationHTTP "github.com/allisson/chatseal/internal/conversation/http"
	conversationRepository "github.com/allisson/chatseal/internal/conversation/repository"
	conversationUseCase "github.com/allisson/chatseal/internal/conversation/usecase"
)

// conversationStore is served by one store for both the use cases and the backfill.
type conversationStore interface {
	conversationUseCase.ConversationRepository
	backfillUseCase.ConversationStore
}

type messageStore interface {
	conversationUseCase.MessageRepository
	backfillUseCase.MessageStore
}

// ConversationRepository returns the conversation repository instance.
func (c *Container) ConversationRepository() (conversationStore, error) {
	var err error
	c.conversationRepoInit.Do(func() {
		c.conversationRepo, err = c.initConversationRepository()
		if err != nil {
			c.initErrors["conversationRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["conversationRepo"]; exists {
		return nil, storedErr
	}
	return c.conversationRepo, nil
}

// MessageRepository returns the message repository instance.
func (c *Container) MessageRepository() (messageStore, error) {
	var err error
	c.messageRepoInit.Do(func() {
		c.messageRepo, err = c.initMessageRepository()
		if err != nil {
			c.initErrors["messageRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["messageRepo"]; exists {
		return nil, storedErr
	}
	return c.messageRepo, nil
}

// ConversationUseCase returns the use case serving conversation owners.
func (c *Container) ConversationUseCase() (conversationUseCase.ConversationUseCase, error) {
	var err error
	c.conversationUseCaseInit.Do(func() {
		c.conversationUseCase, err = c.initConversationUseCase()
		if err != nil {
			c.initErrors["conversationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["conversationUseCase"]; exists {
		return nil, storedErr
	}
	return c.conversationUseCase, nil
}

// AdminReadUseCase returns the admin read use case wrapped with metrics.
func (c *Container) AdminReadUseCase() (conversationUseCase.AdminReadUseCase, error) {
	var err error
	c.adminReadUseCaseInit.Do(func() {
		c.adminReadUseCase, err = c.initAdminReadUseCase()
		if err != nil {
			c.initErrors["adminReadUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["adminReadUseCase"]; exists {
		return nil, storedErr
	}
	return c.adminReadUseCase, nil
}

// AdminReadHandler returns the HTTP handler for admin content reads.
func (c *Container) AdminReadHandler() (*conversationHTTP.AdminReadHandler, error) {
	var err error
	c.adminReadHandlerInit.Do(func() {
		var useCase conversationUseCase.AdminReadUseCase
		useCase, err = c.AdminReadUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get admin read use case for handler: %w", err)
			c.initErrors["adminReadHandler"] = err
			return
		}
		c.adminReadHandler = conversationHTTP.NewAdminReadHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["adminReadHandler"]; exists {
		return nil, storedErr
	}
	return c.adminReadHandler, nil
}

func (c *Container) initConversationRepository() (conversationStore, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for conversation repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return conversationRepository.NewMySQLConversationRepository(db), nil
	case "postgres":
		return conversationRepository.NewPostgreSQLConversationRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initMessageRepository() (messageStore, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for message repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return conversationRepository.NewMySQLMessageRepository(db), nil
	case "postgres":
		return conversationRepository.NewPostgreSQLMessageRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initConversationUseCase() (conversationUseCase.ConversationUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for conversation use case: %w", err)
	}

	conversationRepo, err := c.ConversationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation repository for conversation use case: %w", err)
	}

	messageRepo, err := c.MessageRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get message repository for conversation use case: %w", err)
	}

	encryptor, err := c.FieldEncryptor()
	if err != nil {
		return nil, fmt.Errorf("failed to get field encryptor for conversation use case: %w", err)
	}

	return conversationUseCase.NewConversationUseCase(
		txManager,
		conversationRepo,
		messageRepo,
		encryptor,
		c.Logger(),
	), nil
}

// initAdminReadUseCase wires the admin access use case in as the grant checker.
func (c *Container) initAdminReadUseCase() (conversationUseCase.AdminReadUseCase, error) {
	conversationRepo, err := c.ConversationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation repository for admin read use case: %w", err)
	}

	messageRepo, err := c.MessageRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get message repository for admin read use case: %w", err)
	}

	accessChecker, err := c.AdminAccessUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get admin access use case for admin read use case: %w", err)
	}

	encryptor, err := c.FieldEncryptor()
	if err != nil {
		return nil, fmt.Errorf("failed to get field encryptor for admin read use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for admin read use case: %w", err)
	}

	useCase := conversationUseCase.NewAdminReadUseCase(
		conversationRepo,
		messageRepo,
		accessChecker,
		encryptor,
		c.Logger(),
	)

	return conversationUseCase.NewAdminReadUseCaseWithMetrics(useCase, businessMetrics), nil
}
