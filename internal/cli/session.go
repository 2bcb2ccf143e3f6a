package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/vault-cli/passvault/internal/audit"
	"github.com/vault-cli/passvault/internal/domain"
	"github.com/vault-cli/passvault/internal/store"
	"github.com/vault-cli/passvault/internal/vault"
)

// ErrNotInitialized is returned when no master record exists yet
var ErrNotInitialized = errors.New("vault is not initialized, run 'passvault init'")

// session is an unlocked vault for the lifetime of one command or shell. The
// key is destroyed by Close.
type session struct {
	key     *vault.Key
	repo    *store.Repository
	journal *audit.Journal
}

// Close destroys the vault key and closes the journal
func (s *session) Close() error {
	s.key.Destroy()
	if s.journal != nil {
		return s.journal.Close()
	}
	return nil
}

// masterPassword returns the --passphrase value or prompts for it
func (e *env) masterPassword(p *prompter, prompt string) (string, error) {
	if e.opts.passphrase != "" {
		return e.opts.passphrase, nil
	}
	return p.Password(prompt)
}

func (e *env) initialized() bool {
	return store.Exists(e.cfg.MasterPath())
}

// unlock verifies the master password once and opens the vault document,
// creating an empty one on first use.
func (e *env) unlock(p *prompter) (*session, error) {
	record, err := store.LoadMasterRecord(e.cfg.MasterPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotInitialized
		}
		// a damaged record is indistinguishable from a wrong password
		e.log.Debug().Err(err).Msg("master record unusable")
		record = nil
	}

	password, err := e.masterPassword(p, "Master password: ")
	if err != nil {
		return nil, err
	}

	key, err := vault.Verify(password, record)
	if err != nil {
		e.log.Warn().Msg("master password verification failed")
		return nil, err
	}

	repo, err := e.openRepository()
	if err != nil {
		key.Destroy()
		return nil, err
	}

	journal, err := audit.Open(e.cfg.AuditPath(), e.log)
	if err != nil {
		e.log.Warn().Err(err).Msg("audit journal unavailable, continuing without it")
	} else {
		repo.SetJournal(journal)
	}

	e.log.Debug().Msg("vault unlocked")
	return &session{key: key, repo: repo, journal: journal}, nil
}

func (e *env) openRepository() (*store.Repository, error) {
	path := e.cfg.VaultPath()
	if !store.Exists(path) {
		e.log.Info().Str("path", path).Msg("vault document missing, creating an empty one")
		if err := store.CreateDocument(path); err != nil {
			return nil, err
		}
	}
	return store.Load(path, e.log)
}

// bootstrap creates the master record. Interactive input gets up to three
// attempts to enter a matching password and confirmation.
func (e *env) bootstrap(p *prompter, params vault.Argon2Params) error {
	if e.initialized() {
		return fmt.Errorf("vault already initialized at %s", e.cfg.MasterPath())
	}

	attempts := 1
	if e.opts.passphrase == "" && p.Interactive() {
		attempts = 3
	}

	var record *domain.MasterRecord
	for i := 0; i < attempts; i++ {
		candidate, confirmation, err := e.newPassword(p)
		if err != nil {
			return err
		}

		record, err = vault.Initialize(candidate, confirmation, params)
		if err == nil {
			break
		}
		if !errors.Is(err, vault.ErrConfiguration) || i == attempts-1 {
			return err
		}
		_ = printError(p.out, err)
	}

	if err := store.SaveMasterRecord(e.cfg.MasterPath(), record); err != nil {
		return fmt.Errorf("failed to save master record: %w", err)
	}
	if !store.Exists(e.cfg.VaultPath()) {
		if err := store.CreateDocument(e.cfg.VaultPath()); err != nil {
			return fmt.Errorf("failed to create vault document: %w", err)
		}
	}

	if journal, err := audit.Open(e.cfg.AuditPath(), e.log); err != nil {
		e.log.Warn().Err(err).Msg("audit journal unavailable")
	} else {
		if err := journal.Record(&domain.Operation{Type: domain.OpInit, Success: true}); err != nil {
			e.log.Warn().Err(err).Msg("failed to record initialization")
		}
		_ = journal.Close()
	}

	e.log.Info().Str("path", e.cfg.MasterPath()).Str("kdf", params.String()).Msg("master record created")
	return nil
}

func (e *env) newPassword(p *prompter) (string, string, error) {
	if e.opts.passphrase != "" {
		return e.opts.passphrase, e.opts.passphrase, nil
	}

	candidate, err := p.Password("New master password: ")
	if err != nil {
		return "", "", err
	}
	confirmation, err := p.Password("Confirm master password: ")
	if err != nil {
		return "", "", err
	}
	return candidate, confirmation, nil
}
