package util

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vault-cli/passvault/internal/domain"
	"github.com/vault-cli/passvault/internal/store"
	"github.com/vault-cli/passvault/internal/vault"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{vault.ErrInvalidPassword, ExitAuthFailed},
		{fmt.Errorf("unlock: %w", vault.ErrInvalidPassword), ExitAuthFailed},
		{store.ErrMalformed, ExitIntegrityErr},
		{vault.ErrMalformedValue, ExitIntegrityErr},
		{store.ErrEntryExists, ExitInvalidInput},
		{domain.ErrFieldArity, ExitInvalidInput},
		{vault.ErrConfiguration, ExitInvalidInput},
		{store.ErrFieldNotFound, ExitInvalidInput},
		{store.ErrUnreadable, ExitError},
		{errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError(nil, "ctx"))
	err := WrapError(store.ErrEntryNotFound, "view")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "view: ")
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "info")
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	log = NewLogger(&buf, "nonsense")
	log.Info().Msg("quiet")
	log.Warn().Msg("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}
