// Package crypto provides random string generation for salts and generated
// passwords.
package crypto

import (
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"sync"
)

// Charset selects the alphabet used by GenerateString
type Charset string

const (
	// CharsetAlpha uses a-z and A-Z
	CharsetAlpha Charset = "alpha"
	// CharsetAlnum uses a-z, A-Z and 0-9. Salts are drawn from this set so they
	// are also valid unpadded base64.
	CharsetAlnum Charset = "alnum"
	// CharsetAlnumSpecial adds punctuation to CharsetAlnum
	CharsetAlnumSpecial Charset = "alnum_special"
)

// SaltLength is the number of characters in a generated salt string
const SaltLength = 32

var (
	errInvalidLength  = errors.New("length must be positive")
	errUnknownCharset = errors.New("unknown charset")
)

const (
	lower   = "abcdefghijklmnopqrstuvwxyz"
	upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"
	special = "!@#$%^&*()-_=+[]{}<>?,.:;/|~"
)

var (
	alphabets = map[Charset]string{
		CharsetAlpha:        lower + upper,
		CharsetAlnum:        lower + upper + digits,
		CharsetAlnumSpecial: lower + upper + digits + special,
	}
	randSource io.Reader = rand.Reader
	randMux    sync.RWMutex
)

// SetRandomSource replaces the random source. Passing nil restores crypto/rand.
func SetRandomSource(r io.Reader) {
	randMux.Lock()
	defer randMux.Unlock()
	if r == nil {
		randSource = rand.Reader
		return
	}
	randSource = r
}

// ParseCharset maps a user supplied name onto a Charset
func ParseCharset(name string) (Charset, error) {
	c := Charset(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := alphabets[c]; !ok {
		return "", errUnknownCharset
	}
	return c, nil
}

// GenerateString returns length characters drawn uniformly from charset
func GenerateString(length int, charset Charset) (string, error) {
	if length <= 0 {
		return "", errInvalidLength
	}

	alphabet, ok := alphabets[charset]
	if !ok {
		return "", errUnknownCharset
	}

	randMux.RLock()
	src := randSource
	randMux.RUnlock()

	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		idx, err := randomIndex(src, len(alphabet))
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[idx])
	}

	return b.String(), nil
}

// GenerateSalt returns a SaltLength alphanumeric salt string
func GenerateSalt() (string, error) {
	return GenerateString(SaltLength, CharsetAlnum)
}

// randomIndex returns a value in [0, n) without modulo bias. n must fit in a
// byte, which holds for every alphabet above.
func randomIndex(r io.Reader, n int) (int, error) {
	if n <= 0 || n > 256 {
		return 0, errInvalidLength
	}

	var buf [1]byte
	usable := 256 - (256 % n)
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		if int(buf[0]) < usable {
			return int(buf[0]) % n, nil
		}
	}
}
