package cli

import (
	"github.com/spf13/cobra"
)

func newRenameCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rename <old-name> <new-name>",
		Aliases: []string{"mv"},
		Short:   "Rename an entry",
		Long: `Rename an entry. Entry keys depend on the entry name, so every value is
decrypted and encrypted again under the new name. If any value cannot be
decrypted the entry is left as it was.

Example:
  passvault rename github github-personal`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p := newPrompter(cmd)
			s, err := e.unlock(p)
			if err != nil {
				return err
			}
			defer func() { checkDeferredErr(&err, e.log, "close vault", s.Close()) }()

			if err := s.repo.Rename(s.key, args[0], args[1]); err != nil {
				return err
			}
			return printSuccess(cmd.OutOrStdout(), "Entry '%s' renamed to '%s'", args[0], args[1])
		},
	}
}
