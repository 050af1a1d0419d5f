package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/chatseal/internal/errors"
)

// AdminKeyService generates and verifies the API key admins present as a bearer token.
type AdminKeyService interface {
	// GenerateKey creates a random 256-bit key and its Argon2id hash.
	GenerateKey() (plainKey string, keyHash string, err error)

	// HashKey hashes a plain key using Argon2id.
	HashKey(plainKey string) (string, error)

	// CompareKey reports whether plainKey matches keyHash in constant time.
	CompareKey(plainKey string, keyHash string) bool
}

type adminKeyService struct {
	hasher *pwdhash.PasswordHasher
}

// NewAdminKeyService creates an AdminKeyService using the Moderate Argon2id policy.
func NewAdminKeyService() AdminKeyService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &adminKeyService{hasher: hasher}
}

func (s *adminKeyService) GenerateKey() (plainKey string, keyHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random key")
	}

	plainKey = base64.URLEncoding.EncodeToString(randomBytes)
	keyHash, err = s.HashKey(plainKey)
	if err != nil {
		return "", "", err
	}
	return plainKey, keyHash, nil
}

func (s *adminKeyService) HashKey(plainKey string) (string, error) {
	keyHash, err := s.hasher.Hash([]byte(plainKey))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash admin key")
	}
	return keyHash, nil
}

func (s *adminKeyService) CompareKey(plainKey string, keyHash string) bool {
	if keyHash == "" {
		return false
	}
	ok, err := s.hasher.Verify([]byte(plainKey), keyHash)
	if err != nil {
		return false
	}
	return ok
}
