package app

import (
	"fmt"

	backfillUseCase "github.com/allisson/chatseal/internal/backfill/usecase"
	outboxRepository "github.com/allisson/chatseal/internal/outbox/repository"
	outboxService "github.com/allisson/chatseal/internal/outbox/service"
	outboxUseCase "github.com/allisson/chatseal/internal/outbox/usecase"
)

// OutboxRepository returns the outbox event repository instance.
func (c *Container) OutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	var err error
	c.outboxRepoInit.Do(func() {
		c.outboxRepo, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// OutboxUseCase returns the relay that delivers authorization emails.
func (c *Container) OutboxUseCase() (outboxUseCase.UseCase, error) {
	var err error
	c.outboxUseCaseInit.Do(func() {
		c.outboxUseCase, err = c.initOutboxUseCase()
		if err != nil {
			c.initErrors["outboxUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.outboxUseCase, nil
}

// BackfillUseCase returns the encryption backfill job configured with opts.
// The first call fixes the options for the lifetime of the container.
func (c *Container) BackfillUseCase(opts backfillUseCase.Options) (backfillUseCase.BackfillUseCase, error) {
	var err error
	c.backfillUseCaseInit.Do(func() {
		c.backfillUseCase, err = c.initBackfillUseCase(opts)
		if err != nil {
			c.initErrors["backfillUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["backfillUseCase"]; exists {
		return nil, storedErr
	}
	return c.backfillUseCase, nil
}

// initOutboxRepository creates the outbox event repository based on the database driver.
func (c *Container) initOutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return outboxRepository.NewMySQLOutboxEventRepository(db), nil
	case "postgres":
		return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initOutboxUseCase creates the outbox use case with all its dependencies.
func (c *Container) initOutboxUseCase() (outboxUseCase.UseCase, error) {
	logger := c.Logger()

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	useCaseConfig := outboxUseCase.Config{
		Interval:   c.config.OutboxInterval,
		BatchSize:  c.config.OutboxBatchSize,
		MaxRetries: c.config.OutboxMaxRetries,
	}

	eventProcessor := outboxUseCase.NewAdminAccessEventProcessor(outboxService.NewLogEmailSender(logger), logger)
	return outboxUseCase.NewOutboxUseCase(useCaseConfig, txManager, outboxRepo, eventProcessor, logger), nil
}

// initBackfillUseCase creates the backfill job wrapped with metrics.
func (c *Container) initBackfillUseCase(opts backfillUseCase.Options) (backfillUseCase.BackfillUseCase, error) {
	conversationRepo, err := c.ConversationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation repository for backfill use case: %w", err)
	}

	messageRepo, err := c.MessageRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get message repository for backfill use case: %w", err)
	}

	encryptor, err := c.FieldEncryptor()
	if err != nil {
		return nil, fmt.Errorf("failed to get field encryptor for backfill use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for backfill use case: %w", err)
	}

	useCase := backfillUseCase.NewBackfillUseCase(conversationRepo, messageRepo, encryptor, opts, c.Logger())
	return backfillUseCase.NewBackfillUseCaseWithMetrics(useCase, businessMetrics), nil
}
