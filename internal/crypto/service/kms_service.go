package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/chatseal/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSService opens KMS keepers and resolves the master secret through them.
type KMSService interface {
	// OpenKeeper opens a secrets.Keeper for the KMS provider addressed by keyURI.
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)

	// LoadMasterSecret returns the master secret from its configured value.
	// With an empty keyURI the value is the base64 secret itself; otherwise
	// it is a base64 KMS ciphertext unwrapped by the keeper at keyURI.
	LoadMasterSecret(ctx context.Context, keyURI, encoded string) (*cryptoDomain.MasterSecret, error)
}

type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper supports gcpkms://, awskms://, azurekeyvault://, hashivault:// and base64key://.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

func (k *kmsService) LoadMasterSecret(
	ctx context.Context,
	keyURI, encoded string,
) (*cryptoDomain.MasterSecret, error) {
	if keyURI == "" {
		return cryptoDomain.ParseMasterSecret(encoded)
	}

	keeper, err := k.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = keeper.Close()
	}()

	return cryptoDomain.UnwrapMasterSecret(ctx, keeper, encoded)
}
