// Package crypt adapts filippo.io/age passphrase encryption to the stream
// stages used by the pipeline.
//
// Encryption derives a key from the passphrase with scrypt and protects the
// payload with age's authenticated STREAM construction. Decryption fails
// closed: a wrong passphrase or tampered ciphertext surfaces as an error and
// no unauthenticated plaintext is ever released. Artifacts encrypted to age
// recipients (public keys) are rejected up front with a distinct error, so
// "wrong tool" and "wrong passphrase" remain distinguishable.
package crypt

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
)

var (
	// ErrUnsupportedMode is returned when the artifact was encrypted to
	// recipients (public keys) rather than with a passphrase.
	ErrUnsupportedMode = errors.New("file is encrypted to recipients, not a passphrase")

	// ErrAuthentication is returned when the passphrase is wrong or the
	// artifact header fails authentication.
	ErrAuthentication = errors.New("authentication failed: wrong passphrase or corrupted file")
)

// headerIntro is the first line of every age file. The stanza line that
// follows names the key-wrapping mode; passphrase files use "scrypt".
const (
	headerIntro   = "age-encryption.org/v1\n"
	scryptStanza  = "-> scrypt "
	headerPeekMax = 256
)

// NewWriter wraps dst with an age encryption stage keyed by the passphrase.
// The returned writer must be closed to flush the final authentication tag;
// closing it does not close dst.
func NewWriter(dst io.Writer, passphrase []byte) (io.WriteCloser, error) {
	// age's API takes the passphrase as a string; this copy is scoped to
	// the recipient and reclaimed with it.
	recipient, err := age.NewScryptRecipient(string(passphrase))
	if err != nil {
		return nil, fmt.Errorf("deriving passphrase recipient: %w", err)
	}

	writer, err := age.Encrypt(dst, recipient)
	if err != nil {
		return nil, fmt.Errorf("creating encryption writer: %w", err)
	}

	return writer, nil
}

// NewReader wraps src with an age decryption stage keyed by the passphrase.
// Recipient-encrypted input fails with ErrUnsupportedMode before any key
// derivation; a wrong passphrase fails with ErrAuthentication. Tampering
// within the payload surfaces as a read error from the returned reader.
func NewReader(src io.Reader, passphrase []byte) (io.Reader, error) {
	buffered := bufio.NewReader(src)

	if err := checkPassphraseMode(buffered); err != nil {
		return nil, err
	}

	identity, err := age.NewScryptIdentity(string(passphrase))
	if err != nil {
		return nil, fmt.Errorf("deriving passphrase identity: %w", err)
	}

	reader, err := age.Decrypt(buffered, identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, ErrAuthentication
		}

		return nil, fmt.Errorf("reading encrypted header: %w", err)
	}

	return reader, nil
}

// checkPassphraseMode peeks at the artifact header without consuming it and
// verifies that the first stanza is a scrypt (passphrase) stanza. X25519 and
// other recipient stanzas are rejected; anything unrecognizable is left for
// the decryptor to diagnose.
func checkPassphraseMode(buffered *bufio.Reader) error {
	peeked, err := buffered.Peek(headerPeekMax)
	if err != nil && len(peeked) == 0 {
		return fmt.Errorf("reading encrypted header: %w", err)
	}

	rest, ok := bytes.CutPrefix(peeked, []byte(headerIntro))
	if !ok {
		// Not an age header at all; let the decryptor report the
		// format error.
		return nil
	}

	if bytes.HasPrefix(rest, []byte("-> ")) && !bytes.HasPrefix(rest, []byte(scryptStanza)) {
		return ErrUnsupportedMode
	}

	return nil
}
