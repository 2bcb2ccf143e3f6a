package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	internalcrypto "github.com/vault-cli/passvault/internal/crypto"
	"github.com/vault-cli/passvault/internal/domain"
)

type passgenOptions struct {
	length  int
	charset string
	copy    bool
	ttl     int
}

func newPassgenCommand(e *env) *cobra.Command {
	opts := &passgenOptions{
		length:  20,
		charset: string(internalcrypto.CharsetAlnumSpecial),
		ttl:     -1,
	}

	cmd := &cobra.Command{
		Use:   "passgen",
		Short: "Generate a random password",
		Long: `Generate a random password from a configurable character set, with
optional clipboard support. The vault is not opened.

Example:
  passvault passgen
  passvault passgen --length 32 --charset alnum
  passvault passgen --copy --ttl 15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPassgen(cmd, opts, e)
		},
	}

	cmd.Flags().IntVar(&opts.length, "length", opts.length, "Length of generated password (characters)")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the generated value to the clipboard")
	cmd.Flags().IntVar(&opts.ttl, "ttl", opts.ttl, "Clipboard clear timeout in seconds (-1 to use config default)")
	cmd.Flags().StringVar(&opts.charset, "charset", opts.charset, "Character set (alpha|alnum|alnum_special)")

	return cmd
}

func runPassgen(cmd *cobra.Command, opts *passgenOptions, e *env) error {
	charset, err := internalcrypto.ParseCharset(opts.charset)
	if err != nil {
		return fmt.Errorf("%w: invalid charset %s (valid: alpha, alnum, alnum_special)", domain.ErrValidation, opts.charset)
	}

	if opts.length <= 0 {
		return fmt.Errorf("%w: --length must be positive", domain.ErrValidation)
	}

	password, err := internalcrypto.GenerateString(opts.length, charset)
	if err != nil {
		return fmt.Errorf("failed to generate password: %w", err)
	}

	return outputPassgen(cmd, password, opts, e)
}

func outputPassgen(cmd *cobra.Command, secret string, opts *passgenOptions, e *env) error {
	out := cmd.OutOrStdout()

	if !opts.copy {
		if err := writeOutput(out, "%s\n", secret); err != nil {
			return fmt.Errorf("failed to write password: %w", err)
		}
		return nil
	}

	if !clipboardIsAvailable() {
		return fmt.Errorf("clipboard not available, remove --copy to print instead")
	}

	ttl, err := resolveClipboardTTL(opts.ttl, e)
	if err != nil {
		return err
	}

	done, err := copyToClipboard(secret, ttl)
	if err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}

	if ttl <= 0 {
		return printSuccess(out, "Password copied to clipboard")
	}
	if err := printSuccess(out, "Password copied to clipboard (clears in %s)", ttl.Round(time.Second)); err != nil {
		return fmt.Errorf("failed to write success message: %w", err)
	}

	<-done
	return nil
}
