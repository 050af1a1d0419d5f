package testutil

import (
	"crypto/hmac"
	"crypto/sha256"

	cryptoService "github.com/allisson/chatseal/internal/crypto/service"
)

// hmacKeyDeriver derives keys with a single HMAC-SHA256 so tests that encrypt
// many fields stay fast. It binds the key to the secret, the salt and the user
// id the same way the production deriver does.
type hmacKeyDeriver struct {
	secret []byte
}

func (h *hmacKeyDeriver) DeriveKey(userID string, salt []byte) ([]byte, error) {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(salt)
	mac.Write([]byte{0})
	mac.Write([]byte(userID))
	return mac.Sum(nil), nil
}

// NewFieldCipher returns an AES-256-GCM field cipher keyed by secret.
// Ciphers built from different secrets cannot read each other's records.
func NewFieldCipher(secret string) cryptoService.FieldCipher {
	return cryptoService.NewAESGCMFieldCipher(&hmacKeyDeriver{secret: []byte(secret)})
}
