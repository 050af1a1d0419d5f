package app

import (
	"context"
	"fmt"

	conversationService "github.com/allisson/chatseal/internal/conversation/service"
	cryptoService "github.com/allisson/chatseal/internal/crypto/service"
)

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// FieldCipher returns the per-user AES-GCM field cipher.
// The master secret is loaded on first access and fails fast when missing or malformed.
func (c *Container) FieldCipher() (cryptoService.FieldCipher, error) {
	var err error
	c.fieldCipherInit.Do(func() {
		c.fieldCipher, err = c.initFieldCipher()
		if err != nil {
			c.initErrors["fieldCipher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["fieldCipher"]; exists {
		return nil, storedErr
	}
	return c.fieldCipher, nil
}

// FieldEncryptor returns the conversation and message field encryptor.
func (c *Container) FieldEncryptor() (conversationService.FieldEncryptor, error) {
	var err error
	c.fieldEncryptorInit.Do(func() {
		c.fieldEncryptor, err = c.initFieldEncryptor()
		if err != nil {
			c.initErrors["fieldEncryptor"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["fieldEncryptor"]; exists {
		return nil, storedErr
	}
	return c.fieldEncryptor, nil
}

// initFieldCipher derives per-user keys from the master secret. The deriver keeps
// its own copy of the secret, so the loaded one is zeroed right away.
func (c *Container) initFieldCipher() (cryptoService.FieldCipher, error) {
	secret, err := c.loadMasterSecret(context.Background())
	if err != nil {
		return nil, err
	}
	defer secret.Close()

	deriver, err := cryptoService.NewPBKDF2KeyDeriver(secret, c.config.KDFIterations)
	if err != nil {
		return nil, fmt.Errorf("failed to create key deriver: %w", err)
	}
	return cryptoService.NewAESGCMFieldCipher(deriver), nil
}

func (c *Container) initFieldEncryptor() (conversationService.FieldEncryptor, error) {
	cipher, err := c.FieldCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get field cipher for field encryptor: %w", err)
	}
	return conversationService.NewFieldEncryptor(cipher, c.config.EncryptGuestContent(), c.Logger()), nil
}
