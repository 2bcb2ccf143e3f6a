package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	internalcrypto "github.com/vault-cli/passvault/internal/crypto"
	"github.com/vault-cli/passvault/internal/domain"
)

// fieldFlags collects fields given on the command line. Fields are built in
// flag group order: username, password, security questions, other pairs.
type fieldFlags struct {
	username  string
	password  string
	generate  int
	questions []string
	others    []string
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.username, "username", "", "Username field")
	cmd.Flags().StringVar(&f.password, "password", "", "Password field")
	cmd.Flags().IntVar(&f.generate, "generate", 0, "Generate a password field of N characters")
	cmd.Flags().StringArrayVar(&f.questions, "question", nil, `Security question field as "question=answer" (repeatable)`)
	cmd.Flags().StringArrayVar(&f.others, "other", nil, `Custom field as "label=value" (repeatable)`)
}

func (f *fieldFlags) fields(cmd *cobra.Command) ([]domain.Field, error) {
	var fields []domain.Field

	if cmd.Flags().Changed("username") {
		fields = append(fields, domain.Username{Value: f.username})
	}

	if cmd.Flags().Changed("password") && f.generate > 0 {
		return nil, fmt.Errorf("%w: --password cannot be used with --generate", domain.ErrValidation)
	}
	if cmd.Flags().Changed("password") {
		fields = append(fields, domain.Password{Value: f.password})
	}
	if f.generate > 0 {
		pw, err := internalcrypto.GenerateString(f.generate, internalcrypto.CharsetAlnumSpecial)
		if err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
		fields = append(fields, domain.Password{Value: pw})
	}

	for _, q := range f.questions {
		question, answer, err := splitPair(q, "--question")
		if err != nil {
			return nil, err
		}
		fields = append(fields, domain.SecurityQuestion{Question: question, Answer: answer})
	}

	for _, o := range f.others {
		label, value, err := splitPair(o, "--other")
		if err != nil {
			return nil, err
		}
		fields = append(fields, domain.Other{Label: label, Value: value})
	}

	return fields, nil
}

func splitPair(s, flag string) (string, string, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", fmt.Errorf("%w: %s expects key=value, got %q", domain.ErrValidation, flag, s)
	}
	return k, v, nil
}

var kindChoices = []string{"Username", "Password", "Security question", "Other"}

// promptField asks for a field kind and its values
func promptField(p *prompter) (domain.Field, error) {
	idx, err := p.Choice("Field type:", kindChoices)
	if err != nil {
		return nil, err
	}
	kind := domain.Kinds[idx]

	var values []string
	switch kind {
	case domain.KindUsername:
		v, err := p.Input("Username: ")
		if err != nil {
			return nil, err
		}
		values = []string{v}
	case domain.KindPassword:
		v, err := p.Password("Password: ")
		if err != nil {
			return nil, err
		}
		values = []string{v}
	case domain.KindSecurityQuestion:
		q, err := p.Input("Question: ")
		if err != nil {
			return nil, err
		}
		a, err := p.Password("Answer: ")
		if err != nil {
			return nil, err
		}
		values = []string{q, a}
	case domain.KindOther:
		l, err := p.Input("Label: ")
		if err != nil {
			return nil, err
		}
		v, err := p.Input("Value: ")
		if err != nil {
			return nil, err
		}
		values = []string{l, v}
	}

	return domain.NewField(kind, values)
}

// promptFields asks for fields until the user declines to add another
func promptFields(p *prompter) ([]domain.Field, error) {
	var fields []domain.Field
	for {
		more, err := p.Confirm("Add a field?", len(fields) == 0)
		if err != nil {
			return nil, err
		}
		if !more {
			return fields, nil
		}

		f, err := promptField(p)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
}
