package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/rs/zerolog"

	"github.com/vault-cli/passvault/internal/domain"
	"github.com/vault-cli/passvault/internal/store"
)

// MaxOutputSize is the maximum allowed size for output to prevent memory exhaustion
const MaxOutputSize = 10 * 1024 * 1024 // 10MB

var (
	successColor = color.FgLightGreen
	warnColor    = color.FgYellow
	errColor     = color.FgLightRed
	labelColor   = color.FgCyan
)

// writeString writes a string to the writer with error checking and size limits
func writeString(w io.Writer, s string) error {
	if len(s) > MaxOutputSize {
		return fmt.Errorf("output size %d exceeds maximum allowed size %d",
			len(s), MaxOutputSize)
	}

	n, err := fmt.Fprint(w, s)
	if err != nil {
		return fmt.Errorf("failed to write output (wrote %d bytes): %w", n, err)
	}

	return nil
}

// writeOutput is a helper function to write formatted output with error checking and size limits
func writeOutput(w io.Writer, format string, args ...interface{}) error {
	return writeString(w, fmt.Sprintf(format, args...))
}

func printSuccess(w io.Writer, format string, args ...interface{}) error {
	return writeString(w, successColor.Sprintf("✓ "+format, args...)+"\n")
}

func printWarning(w io.Writer, format string, args ...interface{}) error {
	return writeString(w, warnColor.Sprintf("! "+format, args...)+"\n")
}

func printError(w io.Writer, err error) error {
	return writeString(w, errColor.Sprintf("✗ %v", err)+"\n")
}

// checkDeferredErr reports an error from a deferred cleanup. It only replaces
// *err when the command itself succeeded.
func checkDeferredErr(err *error, log zerolog.Logger, op string, cerr error) {
	if cerr == nil {
		return
	}
	log.Warn().Err(cerr).Str("op", op).Msg("deferred cleanup failed")
	if *err == nil {
		*err = fmt.Errorf("%s: %w", op, cerr)
	}
}

func kindLabel(k domain.Kind) string {
	switch k {
	case domain.KindUsername:
		return "Username"
	case domain.KindPassword:
		return "Password"
	case domain.KindSecurityQuestion:
		return "Security question"
	case domain.KindOther:
		return "Other"
	default:
		return string(k)
	}
}

func printNames(w io.Writer, names []string) error {
	if len(names) == 0 {
		return writeString(w, "No entries.\n")
	}
	var b strings.Builder
	for i, name := range names {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, name)
	}
	return writeString(w, b.String())
}

// printEntry writes the decrypted fields of an entry, numbered from 1. Values
// that did not decrypt are shown as errors in place.
func printEntry(w io.Writer, name string, views []store.FieldView) error {
	var b strings.Builder
	b.WriteString(labelColor.Sprintf("%s", name) + "\n")
	if len(views) == 0 {
		b.WriteString("  (no fields)\n")
	}

	for i, v := range views {
		fmt.Fprintf(&b, "  %d. %s", i+1, kindLabel(v.Kind))
		for j, val := range v.Values {
			sep := ": "
			if j > 0 {
				sep = " / "
			}
			b.WriteString(sep)
			if val.Err != nil {
				b.WriteString(errColor.Sprintf("<unreadable: %v>", val.Err))
				continue
			}
			b.WriteString(val.Plaintext)
		}
		b.WriteString("\n")
	}

	return writeString(w, b.String())
}
