package domain

import (
	"bytes"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
)

// EncryptedRecord is the persisted form of one encrypted field.
//
// A record is self-describing: together with the master secret and the id of
// the user the field belongs to it is enough to recover the plaintext. Records
// are never mutated once written; editing a field produces a new record.
type EncryptedRecord struct {
	Ciphertext []byte
	IV         []byte
	AuthTag    []byte
	KeySalt    []byte

	corruption error
}

// CorruptRecord stands in for stored columns that could not be decoded.
// It never validates, so decrypting it fails like any tampered record.
func CorruptRecord(cause error) *EncryptedRecord {
	if cause == nil {
		cause = ErrInvalidEncryptedRecord
	}
	return &EncryptedRecord{corruption: cause}
}

// Corruption returns the decode error of a record built by CorruptRecord.
func (r *EncryptedRecord) Corruption() error {
	if r == nil {
		return nil
	}
	return r.corruption
}

// EncryptedColumns holds the four hex-encoded TEXT sub-columns an
// EncryptedRecord is stored in. All four are null when the field has no value.
type EncryptedColumns struct {
	Ciphertext sql.NullString
	IV         sql.NullString
	AuthTag    sql.NullString
	KeySalt    sql.NullString
}

// Validate checks the sizes of the IV, tag and salt.
func (r *EncryptedRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidEncryptedRecord)
	}
	if r.corruption != nil {
		return r.corruption
	}
	if len(r.IV) != IVSize {
		return fmt.Errorf("%w: iv must be %d bytes, got %d", ErrInvalidEncryptedRecord, IVSize, len(r.IV))
	}
	if len(r.AuthTag) != AuthTagSize {
		return fmt.Errorf(
			"%w: auth tag must be %d bytes, got %d",
			ErrInvalidEncryptedRecord,
			AuthTagSize,
			len(r.AuthTag),
		)
	}
	if len(r.KeySalt) != KeySaltSize {
		return fmt.Errorf(
			"%w: key salt must be %d bytes, got %d",
			ErrInvalidEncryptedRecord,
			KeySaltSize,
			len(r.KeySalt),
		)
	}
	return nil
}

// Equal reports whether two records carry the same bytes.
func (r *EncryptedRecord) Equal(other *EncryptedRecord) bool {
	if r == nil || other == nil {
		return r == other
	}
	return bytes.Equal(r.Ciphertext, other.Ciphertext) &&
		bytes.Equal(r.IV, other.IV) &&
		bytes.Equal(r.AuthTag, other.AuthTag) &&
		bytes.Equal(r.KeySalt, other.KeySalt)
}

// EncodeHex returns the hex sub-columns for the record. A nil record encodes
// to four null columns.
func (r *EncryptedRecord) EncodeHex() EncryptedColumns {
	if r == nil {
		return EncryptedColumns{}
	}
	return EncryptedColumns{
		Ciphertext: sql.NullString{String: hex.EncodeToString(r.Ciphertext), Valid: true},
		IV:         sql.NullString{String: hex.EncodeToString(r.IV), Valid: true},
		AuthTag:    sql.NullString{String: hex.EncodeToString(r.AuthTag), Valid: true},
		KeySalt:    sql.NullString{String: hex.EncodeToString(r.KeySalt), Valid: true},
	}
}

// IsNull reports whether every sub-column is null.
func (c EncryptedColumns) IsNull() bool {
	return !c.Ciphertext.Valid && !c.IV.Valid && !c.AuthTag.Valid && !c.KeySalt.Valid
}

// DecodeEncryptedColumns rebuilds a record from its hex sub-columns.
//
// All-null columns decode to a nil record. A partially null set of columns
// or bad hex is reported as ErrInvalidEncryptedRecord.
func DecodeEncryptedColumns(c EncryptedColumns) (*EncryptedRecord, error) {
	if c.IsNull() {
		return nil, nil
	}
	if !c.Ciphertext.Valid || !c.IV.Valid || !c.AuthTag.Valid || !c.KeySalt.Valid {
		return nil, fmt.Errorf("%w: partially null columns", ErrInvalidEncryptedRecord)
	}
	return decodeHexParts(c.IV.String, c.AuthTag.String, c.KeySalt.String, c.Ciphertext.String)
}

// String returns the portable single-string form "iv:tag:salt:ciphertext",
// each part hex encoded.
func (r *EncryptedRecord) String() string {
	if r == nil {
		return ""
	}
	return strings.Join([]string{
		hex.EncodeToString(r.IV),
		hex.EncodeToString(r.AuthTag),
		hex.EncodeToString(r.KeySalt),
		hex.EncodeToString(r.Ciphertext),
	}, ":")
}

// ParseEncryptedRecord parses the output of EncryptedRecord.String.
func ParseEncryptedRecord(s string) (*EncryptedRecord, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: expected 4 parts, got %d", ErrInvalidEncryptedRecord, len(parts))
	}
	return decodeHexParts(parts[0], parts[1], parts[2], parts[3])
}

func decodeHexParts(ivHex, tagHex, saltHex, ciphertextHex string) (*EncryptedRecord, error) {
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return nil, fmt.Errorf("%w: iv: %v", ErrInvalidEncryptedRecord, err)
	}
	tag, err := hex.DecodeString(tagHex)
	if err != nil {
		return nil, fmt.Errorf("%w: auth tag: %v", ErrInvalidEncryptedRecord, err)
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, fmt.Errorf("%w: key salt: %v", ErrInvalidEncryptedRecord, err)
	}
	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext: %v", ErrInvalidEncryptedRecord, err)
	}

	record := &EncryptedRecord{
		Ciphertext: ciphertext,
		IV:         iv,
		AuthTag:    tag,
		KeySalt:    salt,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}
