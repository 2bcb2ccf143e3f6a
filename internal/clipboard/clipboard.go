// Package clipboard copies decrypted values to the system clipboard and clears
// them again after a timeout.
package clipboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no clipboard utility is present
var ErrUnavailable = errors.New("clipboard is not available")

// Backend is the clipboard the package writes to
type Backend interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type system struct{}

func (system) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (system) WriteAll(text string) error { return clipboard.WriteAll(text) }

var backend Backend = system{}

// SetBackend swaps the clipboard backend and returns a function restoring the
// previous one
func SetBackend(b Backend) func() {
	prev := backend
	backend = b
	return func() { backend = prev }
}

// CopyWithTimeout copies text to the clipboard and clears it after timeout if
// it still holds text. The returned channel is closed once the clear has run,
// so a short-lived process can wait on it before exiting. A zero timeout
// leaves the value in place and returns a closed channel.
func CopyWithTimeout(text string, timeout time.Duration) (<-chan struct{}, error) {
	if _, isSystem := backend.(system); isSystem && clipboard.Unsupported {
		return nil, ErrUnavailable
	}

	if err := backend.WriteAll(text); err != nil {
		return nil, fmt.Errorf("failed to copy to clipboard: %w", err)
	}

	done := make(chan struct{})
	if timeout <= 0 {
		close(done)
		return done, nil
	}

	b := backend
	go func() {
		defer close(done)
		time.Sleep(timeout)

		// Check if clipboard still contains our text before clearing
		current, err := b.ReadAll()
		if err == nil && current == text {
			_ = b.WriteAll("")
		}
	}()

	return done, nil
}

// IsAvailable returns true if clipboard functionality is available
func IsAvailable() bool {
	if _, isSystem := backend.(system); isSystem && clipboard.Unsupported {
		return false
	}
	_, err := backend.ReadAll()
	return err == nil
}

// Clear clears the clipboard
func Clear() error {
	return backend.WriteAll("")
}
