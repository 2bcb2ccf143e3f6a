package store

import (
	"fmt"

	"github.com/vault-cli/passvault/internal/domain"
	"github.com/vault-cli/passvault/internal/vault"
)

// ValueView is one decrypted value, or the reason it could not be decrypted
type ValueView struct {
	Plaintext string
	Err       error
}

// FieldView is the decrypted form of a stored field
type FieldView struct {
	Kind   domain.Kind
	Values []ValueView
}

// Err returns the first per-value error, if any
func (v FieldView) Err() error {
	for _, val := range v.Values {
		if val.Err != nil {
			return val.Err
		}
	}
	return nil
}

// Field rebuilds the typed plaintext field. It fails if any value did not
// decrypt or the stored kind and value count do not form a valid field.
func (v FieldView) Field() (domain.Field, error) {
	if err := v.Err(); err != nil {
		return nil, err
	}
	plain := make([]string, len(v.Values))
	for i, val := range v.Values {
		plain[i] = val.Plaintext
	}
	return domain.NewField(v.Kind, plain)
}

// View decrypts every value of the named entry. A value that fails to decrypt
// is reported in its ValueView; the rest of the entry is still returned.
func (r *Repository) View(key *vault.Key, name string) ([]FieldView, error) {
	i := r.indexOf(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, name)
	}

	ek, err := vault.DeriveEntryKey(key, name)
	if err != nil {
		return nil, err
	}
	defer ek.Wipe()

	entry := r.doc.Entries[i]
	views := make([]FieldView, len(entry.Fields))
	for fi, f := range entry.Fields {
		values := make([]ValueView, len(f.Values))
		for vi, ev := range f.Values {
			plaintext, err := vault.DecryptValue(ek, ev)
			values[vi] = ValueView{Plaintext: plaintext, Err: err}
		}
		views[fi] = FieldView{Kind: f.Kind, Values: values}
	}

	r.log.Debug().Str("entry", name).Int("fields", len(views)).Msg("entry viewed")

	return views, nil
}
