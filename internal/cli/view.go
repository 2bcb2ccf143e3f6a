package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vault-cli/passvault/internal/clipboard"
	"github.com/vault-cli/passvault/internal/domain"
	"github.com/vault-cli/passvault/internal/store"
)

var (
	copyToClipboard      = clipboard.CopyWithTimeout
	clipboardIsAvailable = clipboard.IsAvailable
)

type viewOptions struct {
	copyField int
	ttl       int
}

func newViewCommand(e *env) *cobra.Command {
	opts := &viewOptions{ttl: -1}

	cmd := &cobra.Command{
		Use:     "view <entry-name>",
		Aliases: []string{"get", "show"},
		Short:   "Decrypt and show an entry",
		Long: `Decrypt and print every field of an entry. Values that cannot be
decrypted are reported in place without hiding the rest of the entry.

With --copy N the secret value of field N (the password, answer or value)
is copied to the clipboard instead of printed, and cleared again after the
clipboard timeout.

Example:
  passvault view github
  passvault view github --copy 2
  passvault view github --copy 2 --ttl 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p := newPrompter(cmd)
			s, err := e.unlock(p)
			if err != nil {
				return err
			}
			defer func() { checkDeferredErr(&err, e.log, "close vault", s.Close()) }()

			views, err := s.repo.View(s.key, args[0])
			if err != nil {
				return err
			}

			if opts.copyField == 0 {
				return printEntry(cmd.OutOrStdout(), args[0], views)
			}
			return copyField(cmd, e, views, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.copyField, "copy", "c", 0, "Copy the value of field N to the clipboard")
	cmd.Flags().IntVar(&opts.ttl, "ttl", opts.ttl, "Clipboard clear timeout in seconds (-1 to use config default)")

	return cmd
}

// secretValue is the value worth copying from a field: the last one
func secretValue(v store.FieldView) (string, error) {
	if err := v.Err(); err != nil {
		return "", err
	}
	if len(v.Values) == 0 {
		return "", fmt.Errorf("%w: field has no values", domain.ErrValidation)
	}
	return v.Values[len(v.Values)-1].Plaintext, nil
}

func copyField(cmd *cobra.Command, e *env, views []store.FieldView, opts *viewOptions) error {
	if opts.copyField < 1 || opts.copyField > len(views) {
		return fmt.Errorf("%w: field %d (entry has %d)", store.ErrFieldNotFound, opts.copyField, len(views))
	}

	value, err := secretValue(views[opts.copyField-1])
	if err != nil {
		return err
	}

	if !clipboardIsAvailable() {
		return fmt.Errorf("clipboard not available, remove --copy to print instead")
	}

	ttl, err := resolveClipboardTTL(opts.ttl, e)
	if err != nil {
		return err
	}

	done, err := copyToClipboard(value, ttl)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if ttl <= 0 {
		return printSuccess(out, "Field %d copied to clipboard", opts.copyField)
	}
	if err := printSuccess(out, "Field %d copied to clipboard (clears in %s)", opts.copyField, ttl.Round(time.Second)); err != nil {
		return err
	}

	<-done
	return nil
}

func resolveClipboardTTL(override int, e *env) (time.Duration, error) {
	if override < -1 {
		return 0, fmt.Errorf("%w: --ttl must be -1 (config default) or a non-negative number of seconds", domain.ErrValidation)
	}

	if override >= 0 {
		return time.Duration(override) * time.Second, nil
	}

	if e.cfg != nil && e.cfg.ClipboardTTL > 0 {
		return e.cfg.ClipboardTTL, nil
	}

	return 30 * time.Second, nil
}
