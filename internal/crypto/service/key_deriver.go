package service

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/chatseal/internal/crypto/domain"
)

// PBKDF2KeyDeriver derives per-record keys with PBKDF2-HMAC-SHA256.
//
// The master secret is the PBKDF2 password and the PBKDF2 salt is
// keySalt || 0x00 || userID, so two users, or two salts of one user, never
// share a key. The deriver is immutable and safe for concurrent use.
type PBKDF2KeyDeriver struct {
	secret     []byte
	iterations int
}

// NewPBKDF2KeyDeriver creates a key deriver bound to secret.
//
// Returns ErrMasterSecretNotSet for a nil secret and ErrWeakKDFIterations
// when iterations is below MinKDFIterations.
func NewPBKDF2KeyDeriver(secret *cryptoDomain.MasterSecret, iterations int) (*PBKDF2KeyDeriver, error) {
	if secret == nil {
		return nil, cryptoDomain.ErrMasterSecretNotSet
	}
	if iterations < cryptoDomain.MinKDFIterations {
		return nil, fmt.Errorf(
			"%w: got %d, minimum is %d",
			cryptoDomain.ErrWeakKDFIterations,
			iterations,
			cryptoDomain.MinKDFIterations,
		)
	}

	key := secret.Bytes()
	if len(key) == 0 {
		return nil, cryptoDomain.ErrMasterSecretNotSet
	}

	return &PBKDF2KeyDeriver{secret: key, iterations: iterations}, nil
}

// DeriveKey returns a 32-byte key for userID and salt.
func (k *PBKDF2KeyDeriver) DeriveKey(userID string, salt []byte) ([]byte, error) {
	if len(salt) != cryptoDomain.KeySaltSize {
		return nil, fmt.Errorf(
			"%w: key salt must be %d bytes, got %d",
			cryptoDomain.ErrInvalidEncryptedRecord,
			cryptoDomain.KeySaltSize,
			len(salt),
		)
	}

	kdfSalt := make([]byte, 0, len(salt)+1+len(userID))
	kdfSalt = append(kdfSalt, salt...)
	kdfSalt = append(kdfSalt, 0x00)
	kdfSalt = append(kdfSalt, userID...)

	return pbkdf2.Key(k.secret, kdfSalt, k.iterations, cryptoDomain.KeySize, sha256.New), nil
}
