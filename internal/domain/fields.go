package domain

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the type of a field. The string value is what gets
// written to the "type" key of the vault document.
type Kind string

// Field kinds
const (
	KindUsername         Kind = "Username"
	KindPassword         Kind = "Password"
	KindSecurityQuestion Kind = "SecurityQuestion"
	KindOther            Kind = "Other"
)

// Kinds lists every known kind in display order
var Kinds = []Kind{KindUsername, KindPassword, KindSecurityQuestion, KindOther}

// Arity returns how many values a field of this kind carries
func (k Kind) Arity() (int, error) {
	switch k {
	case KindUsername, KindPassword:
		return 1, nil
	case KindSecurityQuestion, KindOther:
		return 2, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
}

// ParseKind maps a type string onto a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, err := k.Arity(); err != nil {
		return "", err
	}
	return k, nil
}

// Field is a plaintext credential field. The concrete types below are the only
// implementations, so the number of values is fixed by the type.
type Field interface {
	Kind() Kind
	Values() []string
	field()
}

// Username holds a single account name
type Username struct{ Value string }

// Password holds a single secret
type Password struct{ Value string }

// SecurityQuestion holds a question and its answer
type SecurityQuestion struct {
	Question string
	Answer   string
}

// Other holds a custom label and its value
type Other struct {
	Label string
	Value string
}

func (Username) Kind() Kind         { return KindUsername }
func (Password) Kind() Kind         { return KindPassword }
func (SecurityQuestion) Kind() Kind { return KindSecurityQuestion }
func (Other) Kind() Kind            { return KindOther }

func (f Username) Values() []string         { return []string{f.Value} }
func (f Password) Values() []string         { return []string{f.Value} }
func (f SecurityQuestion) Values() []string { return []string{f.Question, f.Answer} }
func (f Other) Values() []string            { return []string{f.Label, f.Value} }

func (Username) field()         {}
func (Password) field()         {}
func (SecurityQuestion) field() {}
func (Other) field()            {}

// NewField builds the typed field for kind from its plaintext values
func NewField(kind Kind, values []string) (Field, error) {
	n, err := kind.Arity()
	if err != nil {
		return nil, err
	}
	if len(values) != n {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrFieldArity, kind, n, len(values))
	}

	switch kind {
	case KindUsername:
		return Username{Value: values[0]}, nil
	case KindPassword:
		return Password{Value: values[0]}, nil
	case KindSecurityQuestion:
		return SecurityQuestion{Question: values[0], Answer: values[1]}, nil
	default:
		return Other{Label: values[0], Value: values[1]}, nil
	}
}

// StoredField is the encrypted form of a field as persisted in the document.
// Values are positionally paired into the "data" and "nonce" arrays.
type StoredField struct {
	Kind   Kind
	Values []EncryptedValue
}

// Clone returns a deep copy of the field
func (f StoredField) Clone() StoredField {
	return StoredField{Kind: f.Kind, Values: append([]EncryptedValue(nil), f.Values...)}
}

type storedFieldJSON struct {
	Type  string   `json:"type"`
	Data  []string `json:"data"`
	Nonce []string `json:"nonce"`
}

// MarshalJSON writes the field in the {type, data, nonce} layout
func (f StoredField) MarshalJSON() ([]byte, error) {
	out := storedFieldJSON{
		Type:  string(f.Kind),
		Data:  make([]string, len(f.Values)),
		Nonce: make([]string, len(f.Values)),
	}
	for i, v := range f.Values {
		out.Data[i] = v.Ciphertext
		out.Nonce[i] = v.Nonce
	}
	return json.Marshal(out)
}

type storedFieldIn struct {
	Type  *string  `json:"type"`
	Data  []string `json:"data"`
	Nonce []string `json:"nonce"`
}

// UnmarshalJSON reads the {type, data, nonce} layout. Arity is not checked here;
// only the presence of the keys and the pairing of data and nonce entries is.
func (f *StoredField) UnmarshalJSON(b []byte) error {
	var in storedFieldIn
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if in.Type == nil || in.Data == nil || in.Nonce == nil {
		return fmt.Errorf("field requires type, data and nonce")
	}
	if len(in.Data) != len(in.Nonce) {
		return fmt.Errorf("field %q has %d data values but %d nonces", *in.Type, len(in.Data), len(in.Nonce))
	}

	f.Kind = Kind(*in.Type)
	f.Values = make([]EncryptedValue, len(in.Data))
	for i := range in.Data {
		f.Values[i] = EncryptedValue{Ciphertext: in.Data[i], Nonce: in.Nonce[i]}
	}
	return nil
}
