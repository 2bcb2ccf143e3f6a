// Package util provides utility functions and helpers used throughout the password vault.
// It includes error to exit code mapping and logger construction.
package util

import (
	"errors"
	"fmt"
	"os"

	"github.com/vault-cli/passvault/internal/domain"
	"github.com/vault-cli/passvault/internal/store"
	"github.com/vault-cli/passvault/internal/vault"
)

// Exit codes
const (
	ExitOK           = 0
	ExitError        = 1
	ExitInvalidInput = 2
	ExitAuthFailed   = 3
	ExitIntegrityErr = 4
)

// ExitWithCode exits the program with the specified code and message
func ExitWithCode(code int, format string, args ...interface{}) {
	if format != "" {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
	os.Exit(code)
}

// ExitCode maps an error onto the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, vault.ErrInvalidPassword):
		return ExitAuthFailed
	case errors.Is(err, store.ErrMalformed), errors.Is(err, vault.ErrMalformedValue):
		return ExitIntegrityErr
	case errors.Is(err, domain.ErrValidation), errors.Is(err, vault.ErrConfiguration), errors.Is(err, store.ErrNotFound):
		return ExitInvalidInput
	default:
		return ExitError
	}
}

// HandleError handles errors and exits with appropriate code
func HandleError(err error, context string) {
	if err == nil {
		return
	}

	code := ExitCode(err)
	switch {
	case code == ExitIntegrityErr:
		ExitWithCode(code, "Error: %v\nRun 'passvault doctor' to diagnose issues.", err)
	case context != "":
		ExitWithCode(code, "Error: %s - %v", context, err)
	default:
		ExitWithCode(code, "Error: %v", err)
	}
}

// WrapError wraps an error with additional context
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
