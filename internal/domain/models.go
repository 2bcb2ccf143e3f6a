// Package domain defines the core data structures for the password vault.
// It contains the credential entry model, its typed fields and the persisted
// document shapes.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrValidation is the base error for rejected input. More specific
// validation errors wrap it so callers can test with errors.Is.
var ErrValidation = errors.New("validation failed")

var (
	// ErrUnknownKind is returned for a field type that is not one of the known kinds
	ErrUnknownKind = fmt.Errorf("%w: unknown field kind", ErrValidation)
	// ErrFieldArity is returned when a kind receives the wrong number of values
	ErrFieldArity = fmt.Errorf("%w: wrong number of values for field kind", ErrValidation)
)

// MasterRecord is the persisted master credential record
type MasterRecord struct {
	PasswordHash   string `json:"password_hash"`
	HashSalt       string `json:"hash_salt"`
	DerivedKeySalt string `json:"derived_key_salt"`
}

// EncryptedValue is a single encrypted field value with its own nonce.
// Both parts are hex encoded.
type EncryptedValue struct {
	Ciphertext string
	Nonce      string
}

// Entry is a named credential entry as held in the vault document
type Entry struct {
	Name   string        `json:"name"`
	Fields []StoredField `json:"fields"`
}

// Clone returns a deep copy of the entry
func (e Entry) Clone() Entry {
	fields := make([]StoredField, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = f.Clone()
	}
	return Entry{Name: e.Name, Fields: fields}
}

// VaultDocument is the whole-file representation of the vault
type VaultDocument struct {
	Entries []Entry `json:"entries"`
}

// Operation represents an audit journal record
type Operation struct {
	Type      string    `json:"type"`
	Entry     string    `json:"entry,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Hash      string    `json:"hash,omitempty"`
}

// Operation types recorded in the audit journal
const (
	OpInit   = "init"
	OpCreate = "create"
	OpUpdate = "update"
	OpRename = "rename"
	OpDelete = "delete"
)
