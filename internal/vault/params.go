package vault

import (
	"errors"
	"fmt"
)

const (
	// DefaultArgon2Memory is the memory cost in KiB
	DefaultArgon2Memory = 19 * 1024
	// DefaultArgon2Iterations is the time cost
	DefaultArgon2Iterations = 2
	// DefaultArgon2Parallelism is the number of lanes
	DefaultArgon2Parallelism = 1
	// HashLength is the digest length written into new password hashes
	HashLength = 32
)

// Argon2Params holds the password hashing parameters. They are embedded in
// every hash string so verification never depends on current configuration.
type Argon2Params struct {
	Memory      uint32 `json:"memory" yaml:"memory"`
	Iterations  uint32 `json:"iterations" yaml:"iterations"`
	Parallelism uint8  `json:"parallelism" yaml:"parallelism"`
}

// DefaultArgon2Params returns the default argon2id parameters
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      DefaultArgon2Memory,
		Iterations:  DefaultArgon2Iterations,
		Parallelism: DefaultArgon2Parallelism,
	}
}

func (p Argon2Params) String() string {
	return fmt.Sprintf("m=%d,t=%d,p=%d", p.Memory, p.Iterations, p.Parallelism)
}

// ValidateArgon2Params validates argon2 parameters for new master records
func ValidateArgon2Params(params Argon2Params) error {
	if params.Memory < 1024 {
		return errors.New("memory parameter too low (minimum 1024 KB)")
	}
	if params.Memory > 1024*1024 {
		return errors.New("memory parameter too high (maximum 1 GB)")
	}
	if params.Iterations < 1 {
		return errors.New("iterations parameter too low (minimum 1)")
	}
	if params.Iterations > 100 {
		return errors.New("iterations parameter too high (maximum 100)")
	}
	if params.Parallelism < 1 {
		return errors.New("parallelism parameter too low (minimum 1)")
	}
	if params.Parallelism >= 255 {
		return errors.New("parallelism parameter too high (maximum 254)")
	}
	return nil
}
