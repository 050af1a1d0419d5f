package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/chatseal/internal/crypto/domain"
)

// AESGCMCipher is AES-256-GCM with a 16-byte random nonce and a detached 16-byte tag.
// It holds no mutable state and is safe for concurrent use.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance with a 16-byte nonce.
//
// The key must be exactly 32 bytes (256 bits) for AES-256.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, cryptoDomain.IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt encrypts plaintext using AES-256-GCM with additional authenticated data.
//
// The AAD is authenticated but not encrypted. A record sealed with one AAD
// cannot be opened with another, which binds the ciphertext to its owner.
//
// A unique 16-byte nonce is randomly generated for each encryption operation
// using crypto/rand. The sealed output is split so the tag can be stored in
// its own column.
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) (ciphertext, tag, nonce []byte, err error) {
	nonce = make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := a.aead.Seal(nil, nonce, plaintext, aad)
	split := len(sealed) - a.aead.Overhead()
	return sealed[:split], sealed[split:], nonce, nil
}

// Decrypt verifies the tag and decrypts ciphertext with the provided nonce and AAD.
//
// If verification fails no plaintext is returned.
func (a *AESGCMCipher) Decrypt(ciphertext, tag, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != a.aead.NonceSize() || len(tag) != a.aead.Overhead() {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := a.aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
