package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vault-cli/passvault/internal/domain"
	"github.com/vault-cli/passvault/internal/store"
)

type updateOptions struct {
	field  int
	add    bool
	remove int
	fields fieldFlags
}

func newUpdateCommand(e *env) *cobra.Command {
	opts := &updateOptions{}

	cmd := &cobra.Command{
		Use:     "update <entry-name>",
		Aliases: []string{"edit"},
		Short:   "Replace, add or remove a field of an entry",
		Long: `Change a single field of an existing entry. Only the touched field is
re-encrypted; every other field is written back unchanged.

Exactly one of --field, --add or --remove must be given. Fields are numbered
from 1 as shown by 'passvault view'. The new field comes from the field flags,
or is asked for when none are given.

Example:
  passvault update github --field 2 --generate 32
  passvault update github --add --question "city of birth=Paris"
  passvault update github --remove 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, e, opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.field, "field", 0, "Replace field N")
	cmd.Flags().BoolVar(&opts.add, "add", false, "Append a new field")
	cmd.Flags().IntVar(&opts.remove, "remove", 0, "Remove field N")
	opts.fields.register(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, e *env, opts *updateOptions, name string) (err error) {
	modes := 0
	for _, set := range []bool{opts.field != 0, opts.add, opts.remove != 0} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		return fmt.Errorf("%w: exactly one of --field, --add or --remove is required", domain.ErrValidation)
	}

	fields, err := opts.fields.fields(cmd)
	if err != nil {
		return err
	}
	if len(fields) > 1 {
		return fmt.Errorf("%w: only one field can be given", domain.ErrValidation)
	}
	if opts.remove != 0 && len(fields) > 0 {
		return fmt.Errorf("%w: --remove takes no field flags", domain.ErrValidation)
	}

	p := newPrompter(cmd)
	s, err := e.unlock(p)
	if err != nil {
		return err
	}
	defer func() { checkDeferredErr(&err, e.log, "close vault", s.Close()) }()

	out := cmd.OutOrStdout()

	if opts.remove != 0 {
		if err := s.repo.RemoveField(name, opts.remove-1); err != nil {
			return err
		}
		return printSuccess(out, "Field %d removed from '%s'", opts.remove, name)
	}

	// check the target before asking for a new field
	entry, err := s.repo.Find(name)
	if err != nil {
		return err
	}
	if opts.field != 0 && (opts.field < 1 || opts.field > len(entry.Fields)) {
		return fmt.Errorf("%w: field %d of %q", store.ErrFieldNotFound, opts.field, name)
	}

	var field domain.Field
	if len(fields) == 1 {
		field = fields[0]
	} else if field, err = promptField(p); err != nil {
		return err
	}

	if opts.add {
		if err := s.repo.AddField(s.key, name, field); err != nil {
			return err
		}
		return printSuccess(out, "Field added to '%s'", name)
	}

	if err := s.repo.UpdateField(s.key, name, opts.field-1, field); err != nil {
		return err
	}
	return printSuccess(out, "Field %d of '%s' updated", opts.field, name)
}
