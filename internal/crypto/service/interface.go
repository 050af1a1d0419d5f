// Package service provides the cryptographic services behind per-user
// encryption at rest: PBKDF2 key derivation, AES-256-GCM and the field cipher
// that combines them.
package service

import (
	cryptoDomain "github.com/allisson/chatseal/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with AAD and returns the ciphertext, the
	// detached authentication tag and the random nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, tag, nonce []byte, err error)

	// Decrypt verifies tag and decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, tag, nonce, aad []byte) ([]byte, error)
}

// KeyDeriver derives a per-record encryption key from the master secret.
type KeyDeriver interface {
	// DeriveKey returns a 32-byte key bound to userID and salt.
	DeriveKey(userID string, salt []byte) ([]byte, error)
}

// FieldCipher encrypts and decrypts single text fields for a user.
type FieldCipher interface {
	// Encrypt encrypts plaintext under a key derived for userID.
	Encrypt(plaintext string, userID string) (*cryptoDomain.EncryptedRecord, error)

	// Decrypt recovers the plaintext of record for userID.
	Decrypt(record *cryptoDomain.EncryptedRecord, userID string) (string, error)
}
