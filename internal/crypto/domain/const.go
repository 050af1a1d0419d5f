package domain

// Sizes of the fields of an EncryptedRecord and of derived key material.
const (
	// KeySize is the size of a derived AES-256 key in bytes.
	KeySize = 32

	// IVSize is the size of the AES-GCM nonce in bytes (not the GCM default of 12).
	IVSize = 16

	// AuthTagSize is the size of the GCM authentication tag in bytes.
	AuthTagSize = 16

	// KeySaltSize is the size of the per-record key derivation salt in bytes.
	KeySaltSize = 16

	// MinMasterSecretSize is the minimum size of the decoded master secret in bytes.
	MinMasterSecretSize = 32

	// MinKDFIterations is the lowest PBKDF2 iteration count accepted at startup.
	MinKDFIterations = 100000
)
