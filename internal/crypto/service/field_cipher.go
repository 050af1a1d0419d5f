package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/chatseal/internal/crypto/domain"
)

// AESGCMFieldCipher encrypts text fields with AES-256-GCM under a key derived
// per record from the master secret, a fresh salt and the owning user id.
//
// The user id is also the AAD, so a record copied to another user's row fails
// authentication. Encrypting the same plaintext twice yields different
// records. All operations are synchronous and safe for concurrent use.
type AESGCMFieldCipher struct {
	keyDeriver KeyDeriver
}

// NewAESGCMFieldCipher creates a field cipher backed by keyDeriver.
func NewAESGCMFieldCipher(keyDeriver KeyDeriver) *AESGCMFieldCipher {
	return &AESGCMFieldCipher{keyDeriver: keyDeriver}
}

// Encrypt encrypts plaintext for userID.
func (f *AESGCMFieldCipher) Encrypt(plaintext string, userID string) (*cryptoDomain.EncryptedRecord, error) {
	salt := make([]byte, cryptoDomain.KeySaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate key salt: %w", err)
	}

	key, err := f.keyDeriver.DeriveKey(userID, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer cryptoDomain.Zero(key)

	cipher, err := NewAESGCM(key)
	if err != nil {
		return nil, err
	}

	ciphertext, tag, iv, err := cipher.Encrypt([]byte(plaintext), []byte(userID))
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.EncryptedRecord{
		Ciphertext: ciphertext,
		IV:         iv,
		AuthTag:    tag,
		KeySalt:    salt,
	}, nil
}

// Decrypt recovers the plaintext of record for userID.
//
// Any failure (malformed record, wrong user, tampering) is reported as
// ErrDecryptionFailed and no partial plaintext is returned.
func (f *AESGCMFieldCipher) Decrypt(record *cryptoDomain.EncryptedRecord, userID string) (string, error) {
	if err := record.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, err)
	}

	key, err := f.keyDeriver.DeriveKey(userID, record.KeySalt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, err)
	}
	defer cryptoDomain.Zero(key)

	cipher, err := NewAESGCM(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, err)
	}

	plaintext, err := cipher.Decrypt(record.Ciphertext, record.AuthTag, record.IV, []byte(userID))
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}
	return string(plaintext), nil
}
