package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/vault-cli/passvault/internal/domain"
)

// LoadMasterRecord reads the master record file. A record with any of its
// three fields missing is reported as malformed.
func LoadMasterRecord(path string) (*domain.MasterRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	var record domain.MasterRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if record.PasswordHash == "" || record.HashSalt == "" || record.DerivedKeySalt == "" {
		return nil, fmt.Errorf("%w: master record is incomplete", ErrMalformed)
	}

	return &record, nil
}

// SaveMasterRecord writes a new master record. The record is created once and
// never rewritten, so an existing file is an error.
func SaveMasterRecord(path string, record *domain.MasterRecord) error {
	if record == nil {
		return errors.New("master record is nil")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrDocumentExists, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode master record: %w", err)
	}
	return AtomicWriteFile(path, append(data, '\n'))
}
