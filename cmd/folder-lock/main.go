// Command folder-lock packages a directory into a single encrypted artifact
// and reverses the process.
package main

import (
	"fmt"
	"os"

	"github.com/castroofelipee/folder-lock/internal/commands"
	"github.com/castroofelipee/folder-lock/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev" //nolint:gochecknoglobals

func main() {
	cfg := &config.Config{}

	if err := commands.NewRootCommand(cfg, version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
