package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vault-cli/passvault/internal/audit"
)

func newAuditLogCommand(e *env) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "audit-log",
		Short: "View and verify the audit journal",
		Long: `Show the journal of vault mutations. Each record holds the operation,
the entry name and a SHA-256 hash chained to the previous record. Values are
never journaled.

With --verify the hash chain is recomputed and the first broken record is
reported.

Example:
  passvault audit-log
  passvault audit-log --verify`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p := newPrompter(cmd)
			s, err := e.unlock(p)
			if err != nil {
				return err
			}
			defer func() { checkDeferredErr(&err, e.log, "close vault", s.Close()) }()

			if s.journal == nil {
				return fmt.Errorf("audit journal is not available at %s", e.cfg.AuditPath())
			}

			if verify {
				n, err := s.journal.Verify()
				if err != nil {
					return err
				}
				return printSuccess(p.out, "Audit chain intact (%d records)", n)
			}

			return printJournal(p, s.journal)
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Verify the hash chain")

	return cmd
}

func printJournal(p *prompter, j *audit.Journal) error {
	ops, err := j.Entries()
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		return writeString(p.out, "No audit records.\n")
	}

	var b strings.Builder
	for _, op := range ops {
		status := "ok"
		if !op.Success {
			status = "failed"
		}
		fmt.Fprintf(&b, "%s  %-7s %-6s %s\n", op.Timestamp.Local().Format(time.DateTime), op.Type, status, op.Entry)
	}
	return writeString(p.out, b.String())
}
