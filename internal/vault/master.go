// Package vault implements the master credential store and the field cipher.
//
// A master password is hashed with argon2 into a self-describing hash string
// for verification. After a successful verification the same password is hashed
// again under an independent salt; that second hash string is the vault key.
// Entry keys are SHA-256 digests of the vault key and the entry name, and each
// field value is encrypted with ChaCha20 under its own random nonce.
package vault

import (
	"crypto/subtle"
	"errors"
	"fmt"

	internalcrypto "github.com/vault-cli/passvault/internal/crypto"
	"github.com/vault-cli/passvault/internal/domain"
)

var (
	// ErrConfiguration is returned when a master record cannot be initialized
	// from the supplied input
	ErrConfiguration = errors.New("invalid master password configuration")
	// ErrInvalidPassword is returned for any failed verification. It does not
	// distinguish a wrong password from a missing or damaged record.
	ErrInvalidPassword = errors.New("password incorrect")
)

// Initialize builds a new master record. It is run once, when no record exists.
func Initialize(candidate, confirmation string, params Argon2Params) (*domain.MasterRecord, error) {
	if candidate == "" {
		return nil, fmt.Errorf("%w: password cannot be empty", ErrConfiguration)
	}
	if confirmation == "" {
		return nil, fmt.Errorf("%w: password confirmation missing", ErrConfiguration)
	}
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(confirmation)) != 1 {
		return nil, fmt.Errorf("%w: passwords do not match", ErrConfiguration)
	}
	if err := ValidateArgon2Params(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	hashSalt, err := internalcrypto.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	keySalt, err := internalcrypto.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	h, err := hashPassword([]byte(candidate), hashSalt, params)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	defer h.wipe()

	return &domain.MasterRecord{
		PasswordHash:   h.String(),
		HashSalt:       hashSalt,
		DerivedKeySalt: keySalt,
	}, nil
}

// Verify checks candidate against the record and, on success, derives the vault
// key. Every failure returns ErrInvalidPassword and no key material.
func Verify(candidate string, record *domain.MasterRecord) (*Key, error) {
	if record == nil || record.PasswordHash == "" {
		return nil, ErrInvalidPassword
	}

	stored, err := parsePasswordHash(record.PasswordHash)
	if err != nil {
		return nil, ErrInvalidPassword
	}

	password := []byte(candidate)
	defer Zeroize(password)

	computed, err := stored.compute(password, stored.salt)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	match := subtle.ConstantTimeCompare(computed.digest, stored.digest) == 1
	computed.wipe()
	if !match {
		return nil, ErrInvalidPassword
	}

	derived, err := stored.compute(password, record.DerivedKeySalt)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	defer derived.wipe()

	return newKey(derived.bytes()), nil
}

// RecordInfo describes the hashing setup of a master record
type RecordInfo struct {
	Algorithm   string
	Version     int
	Params      Argon2Params
	HashLength  int
	SaltMatches bool
	KeySaltOK   bool
}

// DescribeRecord parses the record's hash string without verifying anything
func DescribeRecord(record *domain.MasterRecord) (*RecordInfo, error) {
	if record == nil {
		return nil, fmt.Errorf("master record missing")
	}

	h, err := parsePasswordHash(record.PasswordHash)
	if err != nil {
		return nil, err
	}

	_, keySaltErr := decodeSalt(record.DerivedKeySalt)

	return &RecordInfo{
		Algorithm:   h.algorithm,
		Version:     h.version,
		Params:      h.params,
		HashLength:  len(h.digest),
		SaltMatches: h.salt == record.HashSalt,
		KeySaltOK:   keySaltErr == nil && record.DerivedKeySalt != h.salt,
	}, nil
}
