package domain

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeeper struct {
	plaintext []byte
	err       error
}

func (f *fakeKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	return plaintext, nil
}

func (f *fakeKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte(nil), f.plaintext...), nil
}

func (f *fakeKeeper) Close() error { return nil }

func TestParseMasterSecret(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	tests := []struct {
		name    string
		encoded string
		wantErr error
	}{
		{name: "valid 32 byte key", encoded: base64.StdEncoding.EncodeToString(key)},
		{
			name:    "valid 64 byte key",
			encoded: base64.StdEncoding.EncodeToString(append(key, key...)),
		},
		{name: "empty", encoded: "", wantErr: ErrMasterSecretNotSet},
		{name: "whitespace only", encoded: "   ", wantErr: ErrMasterSecretNotSet},
		{name: "invalid base64", encoded: "not-base64!!", wantErr: ErrInvalidMasterSecret},
		{
			name:    "too short",
			encoded: base64.StdEncoding.EncodeToString(key[:16]),
			wantErr: ErrInvalidMasterSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret, err := ParseMasterSecret(tt.encoded)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, secret)
				return
			}
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(secret.Bytes()), MinMasterSecretSize)
		})
	}
}

func TestMasterSecret_BytesReturnsCopy(t *testing.T) {
	key := make([]byte, 32)
	key[0] = 7
	secret, err := NewMasterSecret(key)
	require.NoError(t, err)

	// Mutating the input or the returned copy never changes the secret.
	key[0] = 1
	b := secret.Bytes()
	assert.Equal(t, byte(7), b[0])
	b[0] = 9
	assert.Equal(t, byte(7), secret.Bytes()[0])
}

func TestMasterSecret_Close(t *testing.T) {
	secret, err := NewMasterSecret(make([]byte, 32))
	require.NoError(t, err)

	secret.Close()
	assert.Empty(t, secret.Bytes())
}

func TestUnwrapMasterSecret(t *testing.T) {
	ctx := context.Background()
	plain := make([]byte, 32)
	plain[31] = 1
	encoded := base64.StdEncoding.EncodeToString([]byte("kms-ciphertext"))

	t.Run("Success", func(t *testing.T) {
		secret, err := UnwrapMasterSecret(ctx, &fakeKeeper{plaintext: plain}, encoded)
		require.NoError(t, err)
		assert.Equal(t, plain, secret.Bytes())
	})

	t.Run("Error_Empty", func(t *testing.T) {
		_, err := UnwrapMasterSecret(ctx, &fakeKeeper{plaintext: plain}, "")
		assert.ErrorIs(t, err, ErrMasterSecretNotSet)
	})

	t.Run("Error_KeeperFails", func(t *testing.T) {
		_, err := UnwrapMasterSecret(ctx, &fakeKeeper{err: errors.New("kms down")}, encoded)
		assert.ErrorIs(t, err, ErrInvalidMasterSecret)
	})

	t.Run("Error_UnwrappedTooShort", func(t *testing.T) {
		_, err := UnwrapMasterSecret(ctx, &fakeKeeper{plaintext: plain[:8]}, encoded)
		assert.ErrorIs(t, err, ErrInvalidMasterSecret)
	})
}
