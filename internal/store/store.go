// Package store holds the entry repository and the on-disk documents it
// persists: the vault document and the master record.
package store

import (
	"errors"
	"fmt"

	"github.com/vault-cli/passvault/internal/domain"
	"github.com/vault-cli/passvault/internal/vault"
)

// Error variables for store operations
var (
	// ErrStorage is the base error for file level failures
	ErrStorage = errors.New("storage error")
	// ErrUnreadable is returned when a file is missing or cannot be read
	ErrUnreadable = fmt.Errorf("%w: file unreadable", ErrStorage)
	// ErrMalformed is returned when a file is not valid structured data
	ErrMalformed = fmt.Errorf("%w: file malformed", ErrStorage)
	// ErrDocumentExists is returned when creating a document over an existing file
	ErrDocumentExists = errors.New("file already exists")

	// ErrNotFound is the base error for missing entries and fields
	ErrNotFound = errors.New("not found")
	// ErrEntryNotFound is returned when no entry has the requested name
	ErrEntryNotFound = fmt.Errorf("entry %w", ErrNotFound)
	// ErrFieldNotFound is returned for a field index outside the entry
	ErrFieldNotFound = fmt.Errorf("field %w", ErrNotFound)

	// ErrEntryExists is returned when an entry name is already taken
	ErrEntryExists = fmt.Errorf("%w: entry already exists", domain.ErrValidation)
	// ErrEmptyName is returned for an empty entry name
	ErrEmptyName = fmt.Errorf("%w: entry name cannot be empty", domain.ErrValidation)
)

// EntryStore is the set of repository operations the command layer relies on
type EntryStore interface {
	Path() string
	List() []string
	Search(query string) []string
	Find(name string) (domain.Entry, error)
	Create(key *vault.Key, name string, fields []domain.Field) error
	UpdateField(key *vault.Key, name string, index int, field domain.Field) error
	AddField(key *vault.Key, name string, field domain.Field) error
	RemoveField(name string, index int) error
	Rename(key *vault.Key, oldName, newName string) error
	Delete(name string) (int, error)
	View(key *vault.Key, name string) ([]FieldView, error)
}

var _ EntryStore = (*Repository)(nil)
