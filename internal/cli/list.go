package cli

import (
	"github.com/spf13/cobra"
)

func newListCommand(e *env) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List entry names",
		Long: `List the names of all entries in document order.

With --search, only names that fuzzily match every search term are shown,
closest matches first.

Example:
  passvault list
  passvault list --search git`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p := newPrompter(cmd)
			s, err := e.unlock(p)
			if err != nil {
				return err
			}
			defer func() { checkDeferredErr(&err, e.log, "close vault", s.Close()) }()

			names := s.repo.List()
			if search != "" {
				names = s.repo.Search(search)
			}
			return printNames(cmd.OutOrStdout(), names)
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Fuzzy search terms")

	return cmd
}
