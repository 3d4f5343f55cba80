package pipeline

import (
	"bufio"
	"fmt"
	"os"

	"github.com/castroofelipee/folder-lock/internal/archive"
	"github.com/castroofelipee/folder-lock/internal/compress"
	"github.com/castroofelipee/folder-lock/internal/crypt"
	"github.com/castroofelipee/folder-lock/internal/fileutil"
	"github.com/castroofelipee/folder-lock/internal/filter"
)

// EncryptOptions carries the optional knobs for an Encrypt run.
type EncryptOptions struct {
	// Exclude lists glob patterns matched against entry paths relative
	// to the source root; matching entries are not archived.
	Exclude []string
}

// EncryptResult reports what a successful Encrypt run did.
type EncryptResult struct {
	// Scanned counts every entry visited under the source root.
	Scanned int

	// Packed counts entries written to the artifact.
	Packed int

	// ArtifactSize is the final artifact size in bytes.
	ArtifactSize int64
}

// Encrypt packages sourceDir into a single encrypted artifact at destPath.
//
// The stages nest write-side as file ← cipher ← compressor ← archiver and
// are finalized innermost-produced-last: archive terminator, compressed
// trailer, authentication tag, file flush. Output is staged in a temporary
// file and renamed onto destPath only after every stage finalizes, so a
// failed run leaves nothing at destPath.
func Encrypt(sourceDir, destPath string, passphrase []byte, opts EncryptOptions) (result EncryptResult, err error) {
	if len(passphrase) == 0 {
		return result, ErrEmptyPassphrase
	}

	info, statErr := os.Stat(sourceDir)
	if statErr != nil || !info.IsDir() {
		return result, fmt.Errorf("%w: %q", ErrNotADirectory, sourceDir)
	}

	flt, err := filter.New(opts.Exclude)
	if err != nil {
		return result, err
	}

	staging, err := fileutil.NewStaging(destPath)
	if err != nil {
		return result, err
	}
	defer staging.Cleanup()

	buffered := bufio.NewWriter(staging.File)

	cipher, err := crypt.NewWriter(buffered, passphrase)
	if err != nil {
		return result, fmt.Errorf("encrypting to %q: %w", destPath, err)
	}

	compressor, err := compress.NewWriter(cipher)
	if err != nil {
		return result, fmt.Errorf("encrypting to %q: %w", destPath, err)
	}

	stats, err := archive.Pack(compressor, sourceDir, flt.Skip)
	if err != nil {
		// The artifact is already doomed; release the stage resources
		// before the staged file is discarded.
		compressor.Close() //nolint:gosec,errcheck // best-effort on a failed run
		cipher.Close()     //nolint:gosec,errcheck // best-effort on a failed run

		return result, fmt.Errorf("packing %q: %w", sourceDir, err)
	}

	// Strict finalization order: each close flushes buffered bytes into
	// the layer beneath it.
	if err := compressor.Close(); err != nil {
		return result, fmt.Errorf("finalizing compression: %w", err)
	}

	if err := cipher.Close(); err != nil {
		return result, fmt.Errorf("finalizing encryption: %w", err)
	}

	if err := buffered.Flush(); err != nil {
		return result, fmt.Errorf("flushing %q: %w", destPath, err)
	}

	if err := staging.Commit(); err != nil {
		return result, err
	}

	size, err := fileutil.Size(destPath)
	if err != nil {
		return result, err
	}

	result = EncryptResult{
		Scanned:      stats.Scanned,
		Packed:       stats.Packed,
		ArtifactSize: size,
	}

	return result, nil
}
