package store

import (
	"encoding/hex"
	"fmt"

	"github.com/vault-cli/passvault/internal/domain"
	"github.com/vault-cli/passvault/internal/vault"
)

// Problem is a structural defect found without decrypting anything
type Problem struct {
	Entry string
	Field int // -1 for entry level problems
	Issue string
}

func (p Problem) String() string {
	if p.Field < 0 {
		return fmt.Sprintf("%q: %s", p.Entry, p.Issue)
	}
	return fmt.Sprintf("%q field %d: %s", p.Entry, p.Field+1, p.Issue)
}

// Inspect reports duplicate names, empty names, unknown kinds, value counts
// that do not match the kind, and values whose hex or nonce length is wrong.
// Whether values decrypt can only be seen with the key.
func Inspect(doc *domain.VaultDocument) []Problem {
	var problems []Problem
	seen := make(map[string]bool, len(doc.Entries))

	for _, e := range doc.Entries {
		if e.Name == "" {
			problems = append(problems, Problem{Entry: e.Name, Field: -1, Issue: "empty name"})
		}
		if seen[e.Name] {
			problems = append(problems, Problem{Entry: e.Name, Field: -1, Issue: "duplicate name"})
		}
		seen[e.Name] = true

		for fi, f := range e.Fields {
			n, err := f.Kind.Arity()
			if err != nil {
				problems = append(problems, Problem{Entry: e.Name, Field: fi, Issue: fmt.Sprintf("unknown type %q", f.Kind)})
			} else if len(f.Values) != n {
				problems = append(problems, Problem{Entry: e.Name, Field: fi, Issue: fmt.Sprintf("%s has %d values, want %d", f.Kind, len(f.Values), n)})
			}

			for vi, v := range f.Values {
				if issue := checkValue(v); issue != "" {
					problems = append(problems, Problem{Entry: e.Name, Field: fi, Issue: fmt.Sprintf("value %d: %s", vi+1, issue)})
				}
			}
		}
	}

	return problems
}

func checkValue(v domain.EncryptedValue) string {
	nonce, err := hex.DecodeString(v.Nonce)
	if err != nil {
		return "nonce is not hex"
	}
	if len(nonce) != vault.NonceSize {
		return fmt.Sprintf("nonce is %d bytes, want %d", len(nonce), vault.NonceSize)
	}
	if _, err := hex.DecodeString(v.Ciphertext); err != nil {
		return "ciphertext is not hex"
	}
	return ""
}
