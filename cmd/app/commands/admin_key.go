package commands

import (
	"fmt"
	"io"

	adminAccessService "github.com/allisson/chatseal/internal/adminaccess/service"
)

// RunHashAdminKey prints the Argon2id hash of an admin API key as the
// ADMIN_API_KEY_HASH setting. When plainKey is empty a random key is generated
// and printed once alongside its hash; only the hash is stored by the server.
func RunHashAdminKey(keyService adminAccessService.AdminKeyService, writer io.Writer, plainKey string) error {
	if plainKey == "" {
		generated, keyHash, err := keyService.GenerateKey()
		if err != nil {
			return fmt.Errorf("failed to generate admin key: %w", err)
		}
		_, _ = fmt.Fprintln(writer, "# Admin API key (shown once, hand it to the admin UI)")
		_, _ = fmt.Fprintf(writer, "ADMIN_API_KEY=\"%s\"\n", generated)
		_, _ = fmt.Fprintf(writer, "ADMIN_API_KEY_HASH=\"%s\"\n", keyHash)
		return nil
	}

	keyHash, err := keyService.HashKey(plainKey)
	if err != nil {
		return fmt.Errorf("failed to hash admin key: %w", err)
	}
	_, _ = fmt.Fprintf(writer, "ADMIN_API_KEY_HASH=\"%s\"\n", keyHash)
	return nil
}
