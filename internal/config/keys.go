package config

import (
	"fmt"
	"strconv"
	"time"
)

// Keys lists the settable keys in display order
var Keys = []string{
	"data_dir", "master_file", "vault_file", "audit_file",
	"clipboard_ttl", "confirm_destructive", "log_level",
	"kdf.memory", "kdf.iterations", "kdf.parallelism",
}

// Get returns the value of key formatted as it would be written
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "data_dir":
		return c.DataDir, nil
	case "master_file":
		return c.MasterFile, nil
	case "vault_file":
		return c.VaultFile, nil
	case "audit_file":
		return c.AuditFile, nil
	case "clipboard_ttl":
		return c.ClipboardTTL.String(), nil
	case "confirm_destructive":
		return strconv.FormatBool(c.ConfirmDestructive), nil
	case "log_level":
		return c.LogLevel, nil
	case "kdf.memory":
		return strconv.FormatUint(uint64(c.KDF.Memory), 10), nil
	case "kdf.iterations":
		return strconv.FormatUint(uint64(c.KDF.Iterations), 10), nil
	case "kdf.parallelism":
		return strconv.FormatUint(uint64(c.KDF.Parallelism), 10), nil
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

// Set parses value into key and validates the result. On error the
// configuration is left unchanged.
func (c *Config) Set(key, value string) error {
	next := *c

	switch key {
	case "data_dir":
		next.DataDir = value
	case "master_file":
		next.MasterFile = value
	case "vault_file":
		next.VaultFile = value
	case "audit_file":
		next.AuditFile = value
	case "clipboard_ttl":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		next.ClipboardTTL = d
	case "confirm_destructive":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %w", key, err)
		}
		next.ConfirmDestructive = b
	case "log_level":
		next.LogLevel = value
	case "kdf.memory", "kdf.iterations":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid number for %s: %w", key, err)
		}
		if key == "kdf.memory" {
			next.KDF.Memory = uint32(n)
		} else {
			next.KDF.Iterations = uint32(n)
		}
	case "kdf.parallelism":
		n, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return fmt.Errorf("invalid number for %s: %w", key, err)
		}
		next.KDF.Parallelism = uint8(n)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
