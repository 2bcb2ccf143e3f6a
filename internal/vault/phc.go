package vault

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algArgon2id = "argon2id"
	algArgon2i  = "argon2i"

	minSaltLength = 4
	maxSaltLength = 64

	minDigestLength = 4
	maxDigestLength = 64
)

var errInvalidHash = errors.New("invalid password hash string")

// passwordHash is a parsed PHC string of the form
// $argon2id$v=19$m=19456,t=2,p=1$<salt>$<hash>
type passwordHash struct {
	algorithm string
	version   int
	params    Argon2Params
	salt      string
	digest    []byte
}

func (h *passwordHash) String() string {
	return string(h.bytes())
}

// bytes renders the hash string into a fresh buffer that the caller may wipe
func (h *passwordHash) bytes() []byte {
	out := fmt.Appendf(nil, "$%s$v=%d$%s$%s$", h.algorithm, h.version, h.params, h.salt)
	enc := make([]byte, base64.RawStdEncoding.EncodedLen(len(h.digest)))
	base64.RawStdEncoding.Encode(enc, h.digest)
	out = append(out, enc...)
	Zeroize(enc)
	return out
}

// compute hashes password with the algorithm and parameters of h but the given
// salt string, producing a new hash of the same length.
func (h *passwordHash) compute(password []byte, salt string) (*passwordHash, error) {
	raw, err := decodeSalt(salt)
	if err != nil {
		return nil, err
	}

	length := uint32(len(h.digest))
	if length == 0 {
		length = HashLength
	}

	var digest []byte
	switch h.algorithm {
	case algArgon2id:
		digest = argon2.IDKey(password, raw, h.params.Iterations, h.params.Memory, h.params.Parallelism, length)
	case algArgon2i:
		digest = argon2.Key(password, raw, h.params.Iterations, h.params.Memory, h.params.Parallelism, length)
	default:
		return nil, fmt.Errorf("%w: unsupported algorithm %q", errInvalidHash, h.algorithm)
	}

	return &passwordHash{
		algorithm: h.algorithm,
		version:   h.version,
		params:    h.params,
		salt:      salt,
		digest:    digest,
	}, nil
}

func (h *passwordHash) wipe() {
	Zeroize(h.digest)
}

// hashPassword produces a fresh argon2id PHC string for password
func hashPassword(password []byte, salt string, params Argon2Params) (*passwordHash, error) {
	template := &passwordHash{
		algorithm: algArgon2id,
		version:   argon2.Version,
		params:    params,
	}
	return template.compute(password, salt)
}

func parsePasswordHash(s string) (*passwordHash, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errInvalidHash
	}

	h := &passwordHash{algorithm: parts[1], salt: parts[4]}
	if h.algorithm != algArgon2id && h.algorithm != algArgon2i {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", errInvalidHash, h.algorithm)
	}

	version, ok := strings.CutPrefix(parts[2], "v=")
	if !ok {
		return nil, errInvalidHash
	}
	v, err := strconv.Atoi(version)
	if err != nil || v != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported version %q", errInvalidHash, version)
	}
	h.version = v

	params, err := parseParams(parts[3])
	if err != nil {
		return nil, err
	}
	// cost limits apply to stored hashes too, so a damaged record cannot
	// make verification allocate without bound
	if err := ValidateArgon2Params(params); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidHash, err)
	}
	h.params = params

	if _, err := decodeSalt(h.salt); err != nil {
		return nil, err
	}

	h.digest, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, fmt.Errorf("%w: bad digest encoding", errInvalidHash)
	}
	if len(h.digest) < minDigestLength || len(h.digest) > maxDigestLength {
		return nil, fmt.Errorf("%w: digest length %d", errInvalidHash, len(h.digest))
	}

	return h, nil
}

func parseParams(s string) (Argon2Params, error) {
	var p Argon2Params
	seen := 0
	for _, kv := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return p, fmt.Errorf("%w: bad parameter %q", errInvalidHash, kv)
		}
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return p, fmt.Errorf("%w: bad parameter %q", errInvalidHash, kv)
		}
		switch key {
		case "m":
			p.Memory = uint32(n)
		case "t":
			p.Iterations = uint32(n)
		case "p":
			if n == 0 || n > 254 {
				return p, fmt.Errorf("%w: bad parallelism %d", errInvalidHash, n)
			}
			p.Parallelism = uint8(n)
		default:
			// keyid and data are allowed by the format and carry nothing we use
			continue
		}
		seen++
	}
	if seen != 3 || p.Memory == 0 || p.Iterations == 0 {
		return p, fmt.Errorf("%w: missing parameters", errInvalidHash)
	}
	return p, nil
}

// decodeSalt decodes a salt string the way the hash format stores it:
// unpadded standard base64.
func decodeSalt(salt string) ([]byte, error) {
	if len(salt) < minSaltLength || len(salt) > maxSaltLength {
		return nil, fmt.Errorf("%w: salt length %d", errInvalidHash, len(salt))
	}
	raw, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil {
		return nil, fmt.Errorf("%w: salt is not base64", errInvalidHash)
	}
	return raw, nil
}
