package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/castroofelipee/folder-lock/internal/config"
)

// NewRootCommand creates the root command with common configuration.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "folder-lock [flags] command [flags]",
		Short: "Package and encrypt a directory with a passphrase",
		Long: `A directory encryption utility. Packages a directory tree into a
compressed archive and encrypts it with a passphrase-derived key into a
single self-contained artifact.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")
	root.PersistentFlags().Bool("stats", false, "Print processing statistics to stderr")

	root.AddCommand(NewEncryptCommand(cfg), NewDecryptCommand(cfg))

	return root
}

// preRun returns a PreRunE handler that binds flags into cfg, resolves the
// positional arguments, and validates the configuration.
func preRun(cfg *config.Config, decrypt bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("binding flags: %w", err)
		}

		if err := viper.Unmarshal(cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}

		cfg.Source = args[0]
		cfg.Destination = args[1]
		cfg.Decrypt = decrypt

		return cfg.Validate()
	}
}
