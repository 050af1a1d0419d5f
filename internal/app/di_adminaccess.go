package app

import (
	"fmt"

	adminAccessHTTP "github.com/allisson/chatseal/internal/adminaccess/http"
	adminAccessRepository "github.com/allisson/chatseal/internal/adminaccess/repository"
	adminAccessService "github.com/allisson/chatseal/internal/adminaccess/service"
	adminAccessUseCase "github.com/allisson/chatseal/internal/adminaccess/usecase"
	userRepository "github.com/allisson/chatseal/internal/user/repository"
)

// UserRepository returns the user repository instance.
func (c *Container) UserRepository() (adminAccessUseCase.UserRepository, error) {
	var err error
	c.userRepoInit.Do(func() {
		c.userRepo, err = c.initUserRepository()
		if err != nil {
			c.initErrors["userRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// AdminAuthTokenRepository returns the admin authorization token repository.
func (c *Container) AdminAuthTokenRepository() (adminAccessUseCase.AdminAuthTokenRepository, error) {
	var err error
	c.tokenRepoInit.Do(func() {
		c.tokenRepo, err = c.initAdminAuthTokenRepository()
		if err != nil {
			c.initErrors["tokenRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenRepo"]; exists {
		return nil, storedErr
	}
	return c.tokenRepo, nil
}

// AdminKeyService returns the service that hashes and verifies the admin API key.
func (c *Container) AdminKeyService() adminAccessService.AdminKeyService {
	c.adminKeyServiceInit.Do(func() {
		c.adminKeyService = adminAccessService.NewAdminKeyService()
	})
	return c.adminKeyService
}

// AdminAccessUseCase returns the admin access use case wrapped with metrics.
func (c *Container) AdminAccessUseCase() (adminAccessUseCase.AdminAccessUseCase, error) {
	var err error
	c.adminAccessUseCaseInit.Do(func() {
		c.adminAccessUseCase, err = c.initAdminAccessUseCase()
		if err != nil {
			c.initErrors["adminAccessUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["adminAccessUseCase"]; exists {
		return nil, storedErr
	}
	return c.adminAccessUseCase, nil
}

// AdminAccessHandler returns the HTTP handler for the access request flow.
func (c *Container) AdminAccessHandler() (*adminAccessHTTP.AdminAccessHandler, error) {
	var err error
	c.adminAccessHandlerInit.Do(func() {
		var useCase adminAccessUseCase.AdminAccessUseCase
		useCase, err = c.AdminAccessUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get admin access use case for handler: %w", err)
			c.initErrors["adminAccessHandler"] = err
			return
		}
		c.adminAccessHandler = adminAccessHTTP.NewAdminAccessHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["adminAccessHandler"]; exists {
		return nil, storedErr
	}
	return c.adminAccessHandler, nil
}

// initUserRepository creates the user repository based on the database driver.
func (c *Container) initUserRepository() (adminAccessUseCase.UserRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return userRepository.NewMySQLUserRepository(db), nil
	case "postgres":
		return userRepository.NewPostgreSQLUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAdminAuthTokenRepository creates the token repository based on the database driver.
func (c *Container) initAdminAuthTokenRepository() (adminAccessUseCase.AdminAuthTokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for admin auth token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return adminAccessRepository.NewMySQLAdminAuthTokenRepository(db), nil
	case "postgres":
		return adminAccessRepository.NewPostgreSQLAdminAuthTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAdminAccessUseCase creates the admin access use case with all its dependencies.
func (c *Container) initAdminAccessUseCase() (adminAccessUseCase.AdminAccessUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for admin access use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for admin access use case: %w", err)
	}

	tokenRepo, err := c.AdminAuthTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for admin access use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for admin access use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for admin access use case: %w", err)
	}

	useCase := adminAccessUseCase.NewAdminAccessUseCase(
		adminAccessUseCase.Config{
			PublicBaseURL:    c.config.PublicBaseURL,
			MaxDurationHours: c.config.AdminAccessMaxDurationHours,
		},
		txManager,
		userRepo,
		tokenRepo,
		outboxRepo,
		adminAccessService.NewTokenService(),
		c.Logger(),
	)

	return adminAccessUseCase.NewAdminAccessUseCaseWithMetrics(useCase, businessMetrics), nil
}
