package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/castroofelipee/folder-lock/internal/archive"
	"github.com/castroofelipee/folder-lock/internal/compress"
	"github.com/castroofelipee/folder-lock/internal/crypt"
)

// DecryptResult reports what a successful Decrypt run did.
type DecryptResult struct {
	// Restored counts entries recreated under the destination.
	Restored int
}

// Decrypt unpacks the encrypted artifact at srcPath into destDir, which must
// already exist. The stages mirror Encrypt read-side: file → cipher →
// decompressor → unarchiver.
//
// A recipient-encrypted artifact fails with crypt.ErrUnsupportedMode; a
// wrong passphrase or tampered ciphertext fails closed via the cipher stage.
func Decrypt(srcPath, destDir string, passphrase []byte) (result DecryptResult, err error) {
	if len(passphrase) == 0 {
		return result, ErrEmptyPassphrase
	}

	info, statErr := os.Stat(destDir)
	if statErr != nil || !info.IsDir() {
		return result, fmt.Errorf("%w: %q", ErrDestinationMissing, destDir)
	}

	file, err := os.Open(filepath.Clean(srcPath))
	if err != nil {
		return result, fmt.Errorf("opening input file %q: %w", srcPath, err)
	}
	defer file.Close()

	cipher, err := crypt.NewReader(bufio.NewReader(file), passphrase)
	if err != nil {
		return result, fmt.Errorf("decrypting %q: %w", srcPath, err)
	}

	decompressor, err := compress.NewReader(cipher)
	if err != nil {
		return result, fmt.Errorf("decrypting %q: %w", srcPath, err)
	}

	restored, err := archive.Unpack(decompressor, destDir)
	if err != nil {
		return result, fmt.Errorf("unpacking into %q: %w", destDir, err)
	}

	// Drain past the archive terminator so the compressor checksum and
	// the cipher's final authentication chunk are both verified.
	if _, err := io.Copy(io.Discard, decompressor); err != nil {
		return result, fmt.Errorf("verifying %q: %w", srcPath, err)
	}

	if err := decompressor.Close(); err != nil {
		return result, fmt.Errorf("finalizing decompression: %w", err)
	}

	return DecryptResult{Restored: restored}, nil
}
