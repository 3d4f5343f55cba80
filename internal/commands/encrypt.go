package commands

import (
	"github.com/spf13/cobra"

	"github.com/castroofelipee/folder-lock/internal/config"
	"github.com/castroofelipee/folder-lock/internal/logic"
)

// NewEncryptCommand creates a new cobra command for the encrypt subcommand.
func NewEncryptCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "encrypt <source-directory> <destination-file>",
		Aliases: []string{"enc"},
		Short:   "Encrypt a directory into a single artifact",
		Args:    cobra.ExactArgs(2),
		PreRunE: preRun(cfg, false),
		RunE: func(_ *cobra.Command, _ []string) error {
			return logic.RunEncrypt(cfg)
		},
	}

	cmd.Flags().StringSlice("exclude", nil, "Glob patterns for entries to leave out of the artifact")
	cmd.Flags().String("exclude-from", "", "Path to a JSONC file with exclude patterns")

	return cmd
}
