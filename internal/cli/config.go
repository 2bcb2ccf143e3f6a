package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vault-cli/passvault/internal/config"
)

func newConfigCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage passvault configuration",
		Long: `Manage passvault configuration settings.

Configuration is stored in ~/.config/passvault/config.yaml by default, or in
the file named by --config or $PASSVAULT_CONFIG.

Example:
  passvault config path                      # Show config file path
  passvault config get clipboard_ttl         # Get clipboard timeout
  passvault config set clipboard_ttl 60s     # Set clipboard timeout
  passvault config get                       # Show all configuration`,
	}

	getCmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get configuration value(s)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runConfigGetAll(cmd, e)
			}
			v, err := e.cfg.Get(args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), "%s\n", v)
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := config.SaveConfig(e.cfg, e.cfgPath); err != nil {
				return err
			}
			return printSuccess(cmd.OutOrStdout(), "Set %s = %s", args[0], args[1])
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOutput(cmd.OutOrStdout(), "%s\n", e.cfgPath)
		},
	}

	cmd.AddCommand(getCmd, setCmd, pathCmd)

	return cmd
}

func runConfigGetAll(cmd *cobra.Command, e *env) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Configuration file: %s\n\n", e.cfgPath)
	for _, key := range config.Keys {
		v, err := e.cfg.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "%s: %s\n", key, v)
	}
	return writeString(cmd.OutOrStdout(), b.String())
}
