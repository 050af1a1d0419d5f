package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/chatseal/internal/crypto/domain"
)

// masterSecretSize is the length of a generated master secret in bytes.
const masterSecretSize = 32

// KeeperOpener opens the KMS keeper a master secret is wrapped with.
type KeeperOpener interface {
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}

// RunCreateMasterKey generates a random 32-byte master secret and prints the
// environment variables that configure it.
//
// Without kmsKeyURI the secret is printed base64 encoded. With kmsKeyURI the
// secret is encrypted by the KMS keeper first and only the ciphertext is printed,
// for example:
//
//	KMS_KEY_URI="base64key://..."
//	ENCRYPTION_MASTER_KEY="<base64 kms ciphertext>"
//
// The secret is zeroed from memory before returning.
func RunCreateMasterKey(
	ctx context.Context,
	kms KeeperOpener,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
) error {
	masterKey := make([]byte, masterSecretSize)
	defer cryptoDomain.Zero(masterKey)

	if _, err := rand.Read(masterKey); err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}

	if kmsKeyURI == "" {
		logger.Warn("master key generated without KMS, store it in a secrets manager")
		_, _ = fmt.Fprintln(writer, "# Master key configuration (plaintext mode)")
		_, _ = fmt.Fprintf(writer, "ENCRYPTION_MASTER_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(masterKey))
		return nil
	}

	keeper, err := kms.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	ciphertext, err := keeper.Encrypt(ctx, masterKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt master key with KMS: %w", err)
	}

	_, _ = fmt.Fprintln(writer, "# Master key configuration (KMS mode)")
	_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "ENCRYPTION_MASTER_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(ciphertext))
	return nil
}
