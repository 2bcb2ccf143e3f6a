package vault

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/chacha20"

	"github.com/vault-cli/passvault/internal/domain"
)

// NonceSize is the per-value nonce size
const NonceSize = chacha20.NonceSize

// ErrMalformedValue is returned when a stored value cannot be decoded or does
// not decrypt to text. There is no authentication tag, so a tampered
// ciphertext that still decodes usually comes back as garbage rather than this
// error.
var ErrMalformedValue = errors.New("malformed encrypted value")

// GenerateNonce creates a cryptographically secure random nonce
func GenerateNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}

// EncryptValue encrypts plaintext under the entry key with a fresh nonce
func EncryptValue(key *EntryKey, plaintext string) (domain.EncryptedValue, error) {
	nonce, err := GenerateNonce()
	if err != nil {
		return domain.EncryptedValue{}, err
	}

	buf := []byte(plaintext)
	defer Zeroize(buf)

	if err := xorKeyStream(key, nonce, buf); err != nil {
		return domain.EncryptedValue{}, err
	}

	return domain.EncryptedValue{
		Ciphertext: hex.EncodeToString(buf),
		Nonce:      hex.EncodeToString(nonce),
	}, nil
}

// DecryptValue reverses EncryptValue
func DecryptValue(key *EntryKey, value domain.EncryptedValue) (string, error) {
	nonce, err := hex.DecodeString(value.Nonce)
	if err != nil {
		return "", fmt.Errorf("%w: nonce is not hex", ErrMalformedValue)
	}
	if len(nonce) != NonceSize {
		return "", fmt.Errorf("%w: nonce is %d bytes, want %d", ErrMalformedValue, len(nonce), NonceSize)
	}

	buf, err := hex.DecodeString(value.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext is not hex", ErrMalformedValue)
	}
	defer Zeroize(buf)

	if err := xorKeyStream(key, nonce, buf); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("%w: plaintext is not valid UTF-8", ErrMalformedValue)
	}

	return string(buf), nil
}

func xorKeyStream(key *EntryKey, nonce, buf []byte) error {
	if key == nil {
		return errors.New("entry key missing")
	}
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}
	c.XORKeyStream(buf, buf)
	return nil
}
