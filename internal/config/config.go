// Package config holds the runtime configuration assembled from flags and
// positional arguments.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// Config is the runtime configuration for one invocation.
type Config struct {
	// Common flags
	Quiet bool
	Stats bool

	// Encrypt-specific flags
	Exclude     []string
	ExcludeFrom string `mapstructure:"exclude-from"`

	// Positional arguments
	Source      string `validate:"required"`
	Destination string `validate:"required"`

	// Decrypt selects the mirrored operation.
	Decrypt bool
}

// Validate checks the configuration against the struct tags and the
// operation's filesystem preconditions. Running it before the passphrase
// prompt keeps obviously doomed invocations from asking for a secret.
func (c Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	if c.Decrypt {
		if info, err := os.Stat(c.Destination); err != nil || !info.IsDir() {
			return fmt.Errorf("destination directory %q must exist (create it first)", c.Destination)
		}

		return nil
	}

	if info, err := os.Stat(c.Source); err != nil || !info.IsDir() {
		return fmt.Errorf("%q is not a directory", c.Source)
	}

	return nil
}
