package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vault-cli/passvault/internal/store"
)

var shellMenu = []string{"List", "Search", "View", "Create", "Update", "Rename", "Delete", "Exit"}

func newShellCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open the vault once and work in an interactive menu",
		Long: `Verify the master password once and keep the vault open in a menu loop
until Exit is chosen or input ends. The vault key is dropped when the shell
exits.

On first use the shell creates the master record, asking for the new
password and its confirmation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p := newPrompter(cmd)

			if !e.initialized() {
				_ = printWarning(p.out, "No master password is set yet. Creating one.")
				if err := e.bootstrap(p, e.cfg.KDF.Params()); err != nil {
					return err
				}
			}

			s, err := e.unlock(p)
			if err != nil {
				return err
			}
			defer func() { checkDeferredErr(&err, e.log, "close vault", s.Close()) }()

			_ = printSuccess(p.out, "Password verified")
			return runShell(p, e, s)
		},
	}
}

func runShell(p *prompter, e *env, s *session) error {
	for {
		choice, err := p.Choice("\nWhat would you like to do?", shellMenu)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			_ = printError(p.out, err)
			continue
		}

		if shellMenu[choice] == "Exit" {
			return nil
		}

		if err := shellAction(p, e, s, shellMenu[choice]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			_ = printError(p.out, err)
		}
	}
}

func shellAction(p *prompter, e *env, s *session, action string) error {
	switch action {
	case "List":
		return printNames(p.out, s.repo.List())

	case "Search":
		query, err := p.Input("Search: ")
		if err != nil {
			return err
		}
		return printNames(p.out, s.repo.Search(query))

	case "View":
		name, err := p.Input("Entry name: ")
		if err != nil {
			return err
		}
		views, err := s.repo.View(s.key, name)
		if err != nil {
			return err
		}
		return printEntry(p.out, name, views)

	case "Create":
		name, err := p.Input("Entry name: ")
		if err != nil {
			return err
		}
		if _, err := s.repo.Find(name); err == nil {
			return fmt.Errorf("%w: %q", store.ErrEntryExists, name)
		}
		fields, err := promptFields(p)
		if err != nil {
			return err
		}
		if err := s.repo.Create(s.key, name, fields); err != nil {
			return err
		}
		return printSuccess(p.out, "Entry '%s' added with %d field(s)", name, len(fields))

	case "Update":
		return shellUpdate(p, s)

	case "Rename":
		oldName, err := p.Input("Entry name: ")
		if err != nil {
			return err
		}
		newName, err := p.Input("New name: ")
		if err != nil {
			return err
		}
		if err := s.repo.Rename(s.key, oldName, newName); err != nil {
			return err
		}
		return printSuccess(p.out, "Entry '%s' renamed to '%s'", oldName, newName)

	case "Delete":
		name, err := p.Input("Entry name: ")
		if err != nil {
			return err
		}
		return deleteEntry(p, e, s, name, false)
	}

	return fmt.Errorf("%w: %q", errInvalidChoice, action)
}

func shellUpdate(p *prompter, s *session) error {
	name, err := p.Input("Entry name: ")
	if err != nil {
		return err
	}
	views, err := s.repo.View(s.key, name)
	if err != nil {
		return err
	}
	if err := printEntry(p.out, name, views); err != nil {
		return err
	}

	actions := []string{"Replace a field", "Add a field", "Remove a field"}
	if len(views) == 0 {
		actions = actions[1:2]
	}
	choice, err := p.Choice("Update how?", actions)
	if err != nil {
		return err
	}

	switch actions[choice] {
	case "Replace a field":
		n, err := p.Number("Field number: ", len(views))
		if err != nil {
			return err
		}
		field, err := promptField(p)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateField(s.key, name, n-1, field); err != nil {
			return err
		}
		return printSuccess(p.out, "Field %d of '%s' updated", n, name)

	case "Add a field":
		field, err := promptField(p)
		if err != nil {
			return err
		}
		if err := s.repo.AddField(s.key, name, field); err != nil {
			return err
		}
		return printSuccess(p.out, "Field added to '%s'", name)

	default:
		n, err := p.Number("Field number: ", len(views))
		if err != nil {
			return err
		}
		if err := s.repo.RemoveField(name, n-1); err != nil {
			return err
		}
		return printSuccess(p.out, "Field %d removed from '%s'", n, name)
	}
}
