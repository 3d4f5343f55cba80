package commands

import (
	"github.com/spf13/cobra"

	"github.com/castroofelipee/folder-lock/internal/config"
	"github.com/castroofelipee/folder-lock/internal/logic"
)

// NewDecryptCommand creates a new cobra command for the decrypt subcommand.
func NewDecryptCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "decrypt <source-file> <destination-directory>",
		Aliases: []string{"dec"},
		Short:   "Decrypt an artifact back into a directory",
		Args:    cobra.ExactArgs(2),
		PreRunE: preRun(cfg, true),
		RunE: func(_ *cobra.Command, _ []string) error {
			return logic.RunDecrypt(cfg)
		},
	}
}
