package vault

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
)

// EntryKeySize is the size of a derived entry key
const EntryKeySize = sha256.Size

// ErrKeyDestroyed is returned when a destroyed vault key is used
var ErrKeyDestroyed = errors.New("vault key has been destroyed")

// Key is the session vault key. The material stays sealed in a memguard
// enclave and is only exposed for the duration of a single derivation.
type Key struct {
	enclave *memguard.Enclave
}

// newKey seals material into an enclave. material is wiped.
func newKey(material []byte) *Key {
	return &Key{enclave: memguard.NewEnclave(material)}
}

// Destroy drops the reference to the sealed key so further use returns
// ErrKeyDestroyed. The enclave stays encrypted in memory until it is garbage
// collected or memguard.Purge runs at exit.
func (k *Key) Destroy() {
	if k != nil {
		k.enclave = nil
	}
}

// Alive reports whether the key can still be used
func (k *Key) Alive() bool {
	return k != nil && k.enclave != nil
}

// EntryKey is the per-entry cipher key
type EntryKey [EntryKeySize]byte

// Wipe zeroes the key
func (ek *EntryKey) Wipe() {
	Zeroize(ek[:])
}

// DeriveEntryKey computes SHA-256(vault key || entry name). The same name always
// yields the same key under a given vault key, so renaming an entry without
// re-encrypting its values leaves them undecryptable.
func DeriveEntryKey(key *Key, name string) (*EntryKey, error) {
	if !key.Alive() {
		return nil, ErrKeyDestroyed
	}

	buf, err := key.enclave.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open vault key: %w", err)
	}
	defer buf.Destroy()

	h := sha256.New()
	h.Write(buf.Bytes())
	h.Write([]byte(name))

	var ek EntryKey
	h.Sum(ek[:0])
	return &ek, nil
}

// Zeroize clears a byte slice
func Zeroize(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
