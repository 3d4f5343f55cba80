package pipeline

import "errors"

var (
	// ErrNotADirectory is returned when the encryption source is missing
	// or is not a directory.
	ErrNotADirectory = errors.New("source is not a directory")

	// ErrDestinationMissing is returned when the decryption destination
	// directory does not exist. The pipeline never creates it.
	ErrDestinationMissing = errors.New("destination directory must exist")

	// ErrEmptyPassphrase is returned when the passphrase is empty.
	// Rejected before any stream is opened.
	ErrEmptyPassphrase = errors.New("empty passphrase is not allowed")
)
