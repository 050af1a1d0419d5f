package domain

import (
	"github.com/allisson/chatseal/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// so the HTTP layer can map them to status codes.
var (
	// ErrMasterSecretNotSet indicates ENCRYPTION_MASTER_KEY is missing.
	//
	// This is a configuration error: every process that builds the field
	// cipher refuses to start without a master secret.
	ErrMasterSecretNotSet = errors.Wrap(errors.ErrInvalidInput, "master secret not set")

	// ErrInvalidMasterSecret indicates the master secret could not be decoded
	// or is shorter than MinMasterSecretSize.
	ErrInvalidMasterSecret = errors.Wrap(errors.ErrInvalidInput, "invalid master secret")

	// ErrWeakKDFIterations indicates a PBKDF2 iteration count below MinKDFIterations.
	ErrWeakKDFIterations = errors.Wrap(errors.ErrInvalidInput, "kdf iterations below minimum")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid.
	//
	// Derived keys must be exactly 32 bytes (256 bits) for AES-256-GCM.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidEncryptedRecord indicates a persisted record is malformed: a
	// component is missing, is not valid hex, or has the wrong length.
	ErrInvalidEncryptedRecord = errors.Wrap(errors.ErrInvalidInput, "invalid encrypted record")

	// ErrDecryptionFailed indicates a decryption operation failed.
	//
	// This error can occur due to:
	//   - Wrong master secret or wrong user id
	//   - Ciphertext, IV, tag or salt has been tampered with
	//   - Corrupted encrypted data
	//
	// The specific cause is not disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")
)
