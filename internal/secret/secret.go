// Package secret handles passphrase acquisition and disposal.
//
// The passphrase is read interactively from the terminal with echo disabled,
// exactly once per invocation. It is never accepted as a process argument or
// environment variable, so it cannot leak through shell history or process
// listings. Callers own the returned bytes exclusively and must zero them
// with Zero on every exit path.
package secret

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ErrEmpty is returned when the user enters an empty passphrase.
var ErrEmpty = errors.New("empty passphrase is not allowed")

// ErrNoTerminal is returned when stdin is not an interactive terminal.
var ErrNoTerminal = errors.New("no terminal available for passphrase prompt")

// ErrMismatch is returned when the confirmation prompt does not match.
var ErrMismatch = errors.New("passphrases do not match")

// Zero overwrites the passphrase bytes.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ReadPassphrase prompts on stderr and reads a hidden passphrase from the
// terminal. With confirm set, a second prompt must produce the same input;
// both copies are zeroed on mismatch.
func ReadPassphrase(confirm bool) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNoTerminal
	}

	fmt.Fprint(os.Stderr, "Enter passphrase (input hidden): ")

	passphrase, err := term.ReadPassword(fd)

	fmt.Fprintln(os.Stderr)

	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}

	if len(passphrase) == 0 {
		return nil, ErrEmpty
	}

	if !confirm {
		return passphrase, nil
	}

	fmt.Fprint(os.Stderr, "Confirm passphrase: ")

	second, err := term.ReadPassword(fd)

	fmt.Fprintln(os.Stderr)

	if err != nil {
		Zero(passphrase)

		return nil, fmt.Errorf("reading passphrase confirmation: %w", err)
	}

	if !bytes.Equal(passphrase, second) {
		Zero(passphrase)
		Zero(second)

		return nil, ErrMismatch
	}

	Zero(second)

	return passphrase, nil
}
