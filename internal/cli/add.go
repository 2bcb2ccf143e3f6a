package cli

import (
	"github.com/spf13/cobra"
)

func newAddCommand(e *env) *cobra.Command {
	ff := &fieldFlags{}

	cmd := &cobra.Command{
		Use:     "add <entry-name>",
		Aliases: []string{"create"},
		Short:   "Add a new entry to the vault",
		Long: `Add a new entry with the given name. Names are case-sensitive and must
be unique.

Fields can be given as flags; without any field flags you are asked for
fields one at a time.

Example:
  passvault add github --username octocat --generate 24
  passvault add bank --username 12345 --password s3cret --question "first pet=rex"
  passvault add wifi --other "ssid=home" --other "psk=hunter2"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			fields, err := ff.fields(cmd)
			if err != nil {
				return err
			}

			p := newPrompter(cmd)
			s, err := e.unlock(p)
			if err != nil {
				return err
			}
			defer func() { checkDeferredErr(&err, e.log, "close vault", s.Close()) }()

			if len(fields) == 0 {
				if fields, err = promptFields(p); err != nil {
					return err
				}
			}

			if err := s.repo.Create(s.key, args[0], fields); err != nil {
				return err
			}

			return printSuccess(cmd.OutOrStdout(), "Entry '%s' added with %d field(s)", args[0], len(fields))
		},
	}

	ff.register(cmd)

	return cmd
}
