// Package commands provides the command-line interface for folder-lock.
//
// It implements commands for:
//   - encrypting a directory into a single passphrase-protected artifact
//   - decrypting such an artifact back into a directory
//
// The package handles command-line parsing, configuration validation, and
// flag binding through cobra and viper. The passphrase itself is never a
// flag: both commands prompt for it interactively with echo disabled.
package commands
