package cli

import (
	"github.com/spf13/cobra"
)

func newDeleteCommand(e *env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <entry-name>",
		Aliases: []string{"rm"},
		Short:   "Delete an entry",
		Long: `Delete every entry with the given name. Deleting a name that does not
exist changes nothing.

Example:
  passvault delete github
  passvault delete github --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p := newPrompter(cmd)
			s, err := e.unlock(p)
			if err != nil {
				return err
			}
			defer func() { checkDeferredErr(&err, e.log, "close vault", s.Close()) }()

			return deleteEntry(p, e, s, args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func deleteEntry(p *prompter, e *env, s *session, name string, yes bool) error {
	if _, err := s.repo.Find(name); err != nil {
		return printWarning(p.out, "No entry named '%s'", name)
	}

	if e.cfg.ConfirmDestructive && !yes {
		ok, err := p.Confirm("Delete '"+name+"'?", false)
		if err != nil {
			return err
		}
		if !ok {
			return writeString(p.out, "Cancelled.\n")
		}
	}

	n, err := s.repo.Delete(name)
	if err != nil {
		return err
	}
	return printSuccess(p.out, "Deleted %d entr%s named '%s'", n, plural(n, "y", "ies"), name)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
