package store

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vault-cli/passvault/internal/domain"
	"github.com/vault-cli/passvault/internal/vault"
)

// Journal receives a record of every mutation that reached disk
type Journal interface {
	Record(op *domain.Operation) error
}

// Repository owns the in-memory vault document and keeps the file at path in
// step with it. Every mutation builds a new document, writes it atomically and
// only then replaces the in-memory copy, so a failed write leaves both the file
// and the repository as they were.
type Repository struct {
	path    string
	doc     *domain.VaultDocument
	log     zerolog.Logger
	journal Journal
}

// Load reads the vault document at path. A missing or unreadable file is
// ErrUnreadable; a file that is not a vault document is ErrMalformed. No
// repository is returned on error.
func Load(path string, log zerolog.Logger) (*Repository, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}

	if err := EnsureFilePermissions(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not tighten vault file permissions")
	}

	log.Debug().Str("path", path).Int("entries", len(doc.Entries)).Msg("vault loaded")

	return &Repository{path: path, doc: doc, log: log}, nil
}

// SetJournal attaches a journal that is told about each committed mutation
func (r *Repository) SetJournal(j Journal) {
	r.journal = j
}

// Path returns the backing file path
func (r *Repository) Path() string {
	return r.path
}

// List returns the entry names in document order
func (r *Repository) List() []string {
	names := make([]string, 0, len(r.doc.Entries))
	for _, e := range r.doc.Entries {
		names = append(names, e.Name)
	}
	return names
}

// Find returns a copy of the first entry whose name matches exactly
func (r *Repository) Find(name string) (domain.Entry, error) {
	i := r.indexOf(name)
	if i < 0 {
		return domain.Entry{}, fmt.Errorf("%w: %q", ErrEntryNotFound, name)
	}
	return r.doc.Entries[i].Clone(), nil
}

// Create encrypts fields under the entry key for name and appends the entry
func (r *Repository) Create(key *vault.Key, name string, fields []domain.Field) error {
	if name == "" {
		return ErrEmptyName
	}
	if r.indexOf(name) >= 0 {
		return fmt.Errorf("%w: %q", ErrEntryExists, name)
	}

	stored, err := encryptFields(key, name, fields)
	if err != nil {
		return err
	}

	next := r.cloneDocument()
	next.Entries = append(next.Entries, domain.Entry{Name: name, Fields: stored})

	return r.commit(next, domain.OpCreate, name)
}

// UpdateField replaces the field at index with a freshly encrypted one. The
// other fields are carried over untouched.
func (r *Repository) UpdateField(key *vault.Key, name string, index int, field domain.Field) error {
	i := r.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrEntryNotFound, name)
	}
	if index < 0 || index >= len(r.doc.Entries[i].Fields) {
		return fmt.Errorf("%w: index %d of %q", ErrFieldNotFound, index, name)
	}

	stored, err := encryptFields(key, name, []domain.Field{field})
	if err != nil {
		return err
	}

	next := r.cloneDocument()
	next.Entries[i].Fields[index] = stored[0]

	return r.commit(next, domain.OpUpdate, name)
}

// AddField appends a new encrypted field to an existing entry
func (r *Repository) AddField(key *vault.Key, name string, field domain.Field) error {
	i := r.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrEntryNotFound, name)
	}

	stored, err := encryptFields(key, name, []domain.Field{field})
	if err != nil {
		return err
	}

	next := r.cloneDocument()
	next.Entries[i].Fields = append(next.Entries[i].Fields, stored[0])

	return r.commit(next, domain.OpUpdate, name)
}

// RemoveField drops the field at index. No key is needed since nothing is
// decrypted or encrypted.
func (r *Repository) RemoveField(name string, index int) error {
	i := r.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrEntryNotFound, name)
	}
	if index < 0 || index >= len(r.doc.Entries[i].Fields) {
		return fmt.Errorf("%w: index %d of %q", ErrFieldNotFound, index, name)
	}

	next := r.cloneDocument()
	fields := next.Entries[i].Fields
	next.Entries[i].Fields = append(fields[:index:index], fields[index+1:]...)

	return r.commit(next, domain.OpUpdate, name)
}

// Rename moves an entry to a new name. The entry key depends on the name, so
// every value is decrypted under the old name and encrypted again under the
// new one. If any value fails to decrypt nothing is written.
func (r *Repository) Rename(key *vault.Key, oldName, newName string) error {
	if newName == "" {
		return ErrEmptyName
	}
	i := r.indexOf(oldName)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrEntryNotFound, oldName)
	}
	if oldName == newName {
		return nil
	}
	if r.indexOf(newName) >= 0 {
		return fmt.Errorf("%w: %q", ErrEntryExists, newName)
	}

	oldKey, err := vault.DeriveEntryKey(key, oldName)
	if err != nil {
		return err
	}
	defer oldKey.Wipe()
	newKey, err := vault.DeriveEntryKey(key, newName)
	if err != nil {
		return err
	}
	defer newKey.Wipe()

	source := r.doc.Entries[i]
	fields := make([]domain.StoredField, len(source.Fields))
	for fi, f := range source.Fields {
		values := make([]domain.EncryptedValue, len(f.Values))
		for vi, v := range f.Values {
			plaintext, err := vault.DecryptValue(oldKey, v)
			if err != nil {
				return fmt.Errorf("field %d value %d of %q: %w", fi, vi, oldName, err)
			}
			values[vi], err = vault.EncryptValue(newKey, plaintext)
			if err != nil {
				return err
			}
		}
		fields[fi] = domain.StoredField{Kind: f.Kind, Values: values}
	}

	next := r.cloneDocument()
	next.Entries[i] = domain.Entry{Name: newName, Fields: fields}

	return r.commit(next, domain.OpRename, oldName+" -> "+newName)
}

// Delete removes every entry named name and reports how many were removed.
// Deleting a name that is not present is a no-op and writes nothing.
func (r *Repository) Delete(name string) (int, error) {
	next := &domain.VaultDocument{Entries: make([]domain.Entry, 0, len(r.doc.Entries))}
	removed := 0
	for _, e := range r.doc.Entries {
		if e.Name == name {
			removed++
			continue
		}
		next.Entries = append(next.Entries, e.Clone())
	}

	if removed == 0 {
		r.log.Debug().Str("entry", name).Msg("delete: no such entry")
		return 0, nil
	}

	if err := r.commit(next, domain.OpDelete, name); err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *Repository) indexOf(name string) int {
	for i, e := range r.doc.Entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

func (r *Repository) cloneDocument() *domain.VaultDocument {
	next := &domain.VaultDocument{Entries: make([]domain.Entry, len(r.doc.Entries))}
	for i, e := range r.doc.Entries {
		next.Entries[i] = e.Clone()
	}
	return next
}

func (r *Repository) commit(next *domain.VaultDocument, opType, entry string) error {
	if err := WriteDocument(r.path, next); err != nil {
		r.log.Error().Err(err).Str("op", opType).Msg("failed to write vault")
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	r.doc = next

	r.log.Debug().Str("op", opType).Str("entry", entry).Msg("vault updated")

	if r.journal != nil {
		op := &domain.Operation{
			Type:      opType,
			Entry:     entry,
			Timestamp: time.Now().UTC(),
			Success:   true,
		}
		if err := r.journal.Record(op); err != nil {
			r.log.Warn().Err(err).Str("op", opType).Msg("failed to record operation")
		}
	}

	return nil
}

func encryptFields(key *vault.Key, name string, fields []domain.Field) ([]domain.StoredField, error) {
	ek, err := vault.DeriveEntryKey(key, name)
	if err != nil {
		return nil, err
	}
	defer ek.Wipe()

	stored := make([]domain.StoredField, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("%w: nil field", domain.ErrValidation)
		}
		plain := f.Values()
		if n, err := f.Kind().Arity(); err != nil {
			return nil, err
		} else if len(plain) != n {
			return nil, fmt.Errorf("%w: %s takes %d, got %d", domain.ErrFieldArity, f.Kind(), n, len(plain))
		}

		values := make([]domain.EncryptedValue, len(plain))
		for i, p := range plain {
			values[i], err = vault.EncryptValue(ek, p)
			if err != nil {
				return nil, err
			}
		}
		stored = append(stored, domain.StoredField{Kind: f.Kind(), Values: values})
	}
	return stored, nil
}
