package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vault-cli/passvault/internal/domain"
)

// prompter reads answers from the command's input. Passwords are read without
// echo when the input is a terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	p := &prompter{in: bufio.NewReader(in), out: cmd.OutOrStdout(), fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
	}
	return p
}

// Interactive reports whether input comes from a terminal
func (p *prompter) Interactive() bool {
	return p.fd >= 0
}

// Password prompts for a password without echoing to terminal
func (p *prompter) Password(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	if p.fd < 0 {
		return p.readLine()
	}

	password, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), nil
}

// Input prompts for regular input
func (p *prompter) Input(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.readLine()
	return strings.TrimSpace(line), err
}

// Confirm prompts for yes/no confirmation
func (p *prompter) Confirm(prompt string, defaultYes bool) (bool, error) {
	suffix := " [y/N]: "
	if defaultYes {
		suffix = " [Y/n]: "
	}

	input, err := p.Input(prompt + suffix)
	if err != nil {
		return false, err
	}

	input = strings.ToLower(input)
	if input == "" {
		return defaultYes, nil
	}

	return input == "y" || input == "yes", nil
}

// Choice prompts for a choice from a list of options and returns its index
func (p *prompter) Choice(prompt string, choices []string) (int, error) {
	fmt.Fprintln(p.out, prompt)
	for i, choice := range choices {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, choice)
	}

	input, err := p.Input(fmt.Sprintf("Enter choice (1-%d): ", len(choices)))
	if err != nil {
		return 0, err
	}

	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(choices) {
		return n - 1, nil
	}

	for i, choice := range choices {
		if strings.EqualFold(choice, input) {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", errInvalidChoice, input)
}

// Number prompts for a 1-based position no greater than max
func (p *prompter) Number(prompt string, max int) (int, error) {
	input, err := p.Input(prompt)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > max {
		return 0, fmt.Errorf("%w: %q (expected 1-%d)", errInvalidChoice, input, max)
	}
	return n, nil
}

var errInvalidChoice = fmt.Errorf("%w: invalid choice", domain.ErrValidation)

func (p *prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
