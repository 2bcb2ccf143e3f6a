package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/vault-cli/passvault/internal/domain"
)

// documentJSON mirrors domain.VaultDocument with a pointer slice so a missing
// "entries" key can be told apart from an empty list.
type documentJSON struct {
	Entries *[]entryJSON `json:"entries"`
}

type entryJSON struct {
	Name   *string               `json:"name"`
	Fields *[]domain.StoredField `json:"fields"`
}

// ReadDocument reads and parses the vault document at path
func ReadDocument(path string) (*domain.VaultDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return DecodeDocument(data)
}

// DecodeDocument parses a serialized vault document. Only the structure is
// checked; individual values are validated when they are decrypted.
func DecodeDocument(data []byte) (*domain.VaultDocument, error) {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if raw.Entries == nil {
		return nil, fmt.Errorf("%w: missing entries", ErrMalformed)
	}

	doc := &domain.VaultDocument{Entries: make([]domain.Entry, 0, len(*raw.Entries))}
	for i, e := range *raw.Entries {
		if e.Name == nil {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrMalformed, i)
		}
		if e.Fields == nil {
			return nil, fmt.Errorf("%w: entry %q has no fields", ErrMalformed, *e.Name)
		}
		doc.Entries = append(doc.Entries, domain.Entry{Name: *e.Name, Fields: *e.Fields})
	}

	return doc, nil
}

// EncodeDocument serializes the document. Empty lists are written as [] rather
// than null.
func EncodeDocument(doc *domain.VaultDocument) ([]byte, error) {
	out := domain.VaultDocument{Entries: make([]domain.Entry, 0)}
	if doc != nil {
		for _, e := range doc.Entries {
			if e.Fields == nil {
				e.Fields = []domain.StoredField{}
			}
			out.Entries = append(out.Entries, e)
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteDocument atomically replaces the document at path
func WriteDocument(path string, doc *domain.VaultDocument) error {
	data, err := EncodeDocument(doc)
	if err != nil {
		return err
	}
	return AtomicWriteFile(path, data)
}

// CreateDocument writes an empty vault document at path. It refuses to
// overwrite an existing file.
func CreateDocument(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrDocumentExists, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return WriteDocument(path, &domain.VaultDocument{})
}

// Exists reports whether a file is present at path
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
