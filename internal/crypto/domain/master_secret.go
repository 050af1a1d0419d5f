package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// KMSKeeper is the subset of *secrets.Keeper needed to unwrap the master secret.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// MasterSecret is the process-wide secret every per-user key is derived from.
//
// It is created once at startup and injected into the key deriver. The secret
// never leaves the process and is never persisted next to the data.
type MasterSecret struct {
	key []byte
}

// NewMasterSecret copies key into a new MasterSecret.
func NewMasterSecret(key []byte) (*MasterSecret, error) {
	if len(key) == 0 {
		return nil, ErrMasterSecretNotSet
	}
	if len(key) < MinMasterSecretSize {
		return nil, fmt.Errorf(
			"%w: must be at least %d bytes, got %d",
			ErrInvalidMasterSecret,
			MinMasterSecretSize,
			len(key),
		)
	}
	cp := make([]byte, len(key))
	copy(cp, key)
	return &MasterSecret{key: cp}, nil
}

// Bytes returns a copy of the secret. Callers should Zero it after use.
func (m *MasterSecret) Bytes() []byte {
	cp := make([]byte, len(m.key))
	copy(cp, m.key)
	return cp
}

// Close zeroes the secret.
func (m *MasterSecret) Close() {
	Zero(m.key)
	m.key = nil
}

// ParseMasterSecret decodes a base64 encoded master secret.
func ParseMasterSecret(encoded string) (*MasterSecret, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrMasterSecretNotSet
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrInvalidMasterSecret, err)
	}
	defer Zero(key)

	return NewMasterSecret(key)
}

// UnwrapMasterSecret decodes a base64 KMS ciphertext and decrypts it with
// keeper, yielding the master secret.
func UnwrapMasterSecret(ctx context.Context, keeper KMSKeeper, encoded string) (*MasterSecret, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrMasterSecretNotSet
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrInvalidMasterSecret, err)
	}

	key, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: kms decrypt: %v", ErrInvalidMasterSecret, err)
	}
	defer Zero(key)

	return NewMasterSecret(key)
}
