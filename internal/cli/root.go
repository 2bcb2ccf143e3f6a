package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vault-cli/passvault/internal/config"
	"github.com/vault-cli/passvault/internal/util"
)

type rootOptions struct {
	cfgFile    string
	passphrase string
	verbose    bool
}

// env is what every command needs once the root command has loaded the
// configuration
type env struct {
	opts    *rootOptions
	cfgPath string
	cfg     *config.Config
	log     zerolog.Logger
}

// NewRootCommand builds the passvault command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	e := &env{opts: opts, log: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "passvault",
		Short: "A local, single-user password vault",
		Long: `Passvault keeps named credential entries (usernames, passwords, security
questions and custom label/value pairs) in a single local file protected by a
master password.

The master password is hashed with Argon2id. Each entry is encrypted with a key
derived from the vault key and the entry name, and every value gets its own
ChaCha20 nonce. Nothing leaves the machine.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := opts.cfgFile
			if path == "" {
				path = config.DefaultConfigPath()
			}

			cfg, err := config.LoadConfig(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			e.cfg = cfg
			e.cfgPath = path

			level := cfg.LogLevel
			if opts.verbose {
				level = "debug"
			}
			e.log = util.NewLogger(cmd.ErrOrStderr(), level)
			e.log.Debug().Str("config", path).Str("data_dir", cfg.DataDir).Msg("configuration loaded")

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.config/passvault/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.passphrase, "passphrase", "", "master password (for non-interactive use)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(
		newInitCommand(e),
		newListCommand(e),
		newViewCommand(e),
		newAddCommand(e),
		newUpdateCommand(e),
		newRenameCommand(e),
		newDeleteCommand(e),
		newShellCommand(e),
		newPassgenCommand(e),
		newAuditLogCommand(e),
		newDoctorCommand(e),
		newConfigCommand(e),
	)

	return cmd
}

// Execute builds the root command and runs it
func Execute() error {
	return NewRootCommand().Execute()
}
