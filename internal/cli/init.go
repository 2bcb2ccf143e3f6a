package cli

import (
	"github.com/spf13/cobra"
)

type initOptions struct {
	kdfMemory      uint32
	kdfIterations  uint32
	kdfParallelism uint8
}

func newInitCommand(e *env) *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the master password and an empty vault",
		Long: `Create the master record from a new master password and an empty vault
document in the data directory.

The password is hashed with Argon2id under a random salt. A second,
independent salt is stored for deriving the vault key. The record is
written once; there is no way to change the master password afterwards.

Example:
  passvault init
  passvault init --kdf-memory 65536 --kdf-iterations 3
  passvault init --passphrase "correct horse battery staple"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, e, opts)
		},
	}

	cmd.Flags().Uint32Var(&opts.kdfMemory, "kdf-memory", 0, "Memory parameter for Argon2id in KB (default from config)")
	cmd.Flags().Uint32Var(&opts.kdfIterations, "kdf-iterations", 0, "Time parameter for Argon2id (default from config)")
	cmd.Flags().Uint8Var(&opts.kdfParallelism, "kdf-parallelism", 0, "Parallelism parameter for Argon2id (default from config)")

	return cmd
}

func runInit(cmd *cobra.Command, e *env, opts *initOptions) error {
	params := e.cfg.KDF.Params()
	if cmd.Flags().Changed("kdf-memory") {
		params.Memory = opts.kdfMemory
	}
	if cmd.Flags().Changed("kdf-iterations") {
		params.Iterations = opts.kdfIterations
	}
	if cmd.Flags().Changed("kdf-parallelism") {
		params.Parallelism = opts.kdfParallelism
	}

	p := newPrompter(cmd)
	if e.opts.passphrase == "" {
		_ = writeString(p.out, "Choose a strong master password. It cannot be recovered or changed.\n")
	}

	if err := e.bootstrap(p, params); err != nil {
		return err
	}

	if err := printSuccess(p.out, "Vault initialized in %s", e.cfg.DataDir); err != nil {
		return err
	}
	return writeOutput(p.out, "KDF parameters: %s\n", params)
}
