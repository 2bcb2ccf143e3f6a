// Package config handles the configuration management for the password vault.
// It provides functionality to load, save, and manage application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/vault-cli/passvault/internal/vault"
)

// EnvConfigPath overrides the default config file location
const EnvConfigPath = "PASSVAULT_CONFIG"

// Config represents the vault configuration
type Config struct {
	DataDir            string        `yaml:"data_dir"`
	MasterFile         string        `yaml:"master_file"`
	VaultFile          string        `yaml:"vault_file"`
	AuditFile          string        `yaml:"audit_file"`
	ClipboardTTL       time.Duration `yaml:"clipboard_ttl"`
	ConfirmDestructive bool          `yaml:"confirm_destructive"`
	LogLevel           string        `yaml:"log_level"`
	KDF                KDFConfig     `yaml:"kdf"`
}

// KDFConfig represents the argon2 parameters used for new master records.
// Existing records keep the parameters embedded in their hash.
type KDFConfig struct {
	Memory      uint32 `yaml:"memory"`
	Iterations  uint32 `yaml:"iterations"`
	Parallelism uint8  `yaml:"parallelism"`
}

// Params converts the KDF section to hashing parameters
func (k KDFConfig) Params() vault.Argon2Params {
	return vault.Argon2Params{
		Memory:      k.Memory,
		Iterations:  k.Iterations,
		Parallelism: k.Parallelism,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	defaults := vault.DefaultArgon2Params()
	return &Config{
		DataDir:            filepath.Join(home, ".local", "share", "passvault"),
		MasterFile:         "settings.json",
		VaultFile:          "db.json",
		AuditFile:          "audit.db",
		ClipboardTTL:       30 * time.Second,
		ConfirmDestructive: true,
		LogLevel:           "warn",
		KDF: KDFConfig{
			Memory:      defaults.Memory,
			Iterations:  defaults.Iterations,
			Parallelism: defaults.Parallelism,
		},
	}
}

// DefaultConfigPath returns $PASSVAULT_CONFIG or ~/.config/passvault/config.yaml
func DefaultConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "passvault", "config.yaml")
}

// MasterPath returns the master record file path
func (c *Config) MasterPath() string {
	return c.resolve(c.MasterFile)
}

// VaultPath returns the vault document path
func (c *Config) VaultPath() string {
	return c.resolve(c.VaultFile)
}

// AuditPath returns the audit journal path
func (c *Config) AuditPath() string {
	return c.resolve(c.AuditFile)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// Validate checks the configuration for unusable values
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir cannot be empty")
	}
	if c.MasterFile == "" || c.VaultFile == "" || c.AuditFile == "" {
		return errors.New("master_file, vault_file and audit_file must be set")
	}
	if c.MasterPath() == c.VaultPath() {
		return errors.New("master_file and vault_file must differ")
	}
	if c.ClipboardTTL < 0 {
		return errors.New("clipboard_ttl cannot be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	if err := vault.ValidateArgon2Params(c.KDF.Params()); err != nil {
		return fmt.Errorf("invalid kdf: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from file or returns default
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Create default config file
		if err := SaveConfig(cfg, configPath); err != nil {
			return cfg, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, configPath string) error {
	cleanPath := filepath.Clean(configPath)

	dir := filepath.Dir(cleanPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
