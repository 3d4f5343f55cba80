// Package logic implements the application flow around the pipeline:
// passphrase acquisition, exclude-pattern loading, and result reporting.
package logic

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/castroofelipee/folder-lock/internal/config"
	"github.com/castroofelipee/folder-lock/internal/filter"
	"github.com/castroofelipee/folder-lock/internal/pipeline"
	"github.com/castroofelipee/folder-lock/internal/secret"
)

// RunEncrypt drives one encrypt invocation end to end.
func RunEncrypt(cfg *config.Config) error {
	excludes, err := loadExcludes(cfg)
	if err != nil {
		return err
	}

	passphrase, err := secret.ReadPassphrase(true)
	if err != nil {
		return err
	}
	defer secret.Zero(passphrase)

	start := time.Now()

	result, err := pipeline.Encrypt(cfg.Source, cfg.Destination, passphrase, pipeline.EncryptOptions{
		Exclude: excludes,
	})
	if err != nil {
		return err
	}

	if !cfg.Quiet {
		fmt.Printf("Encrypted %q -> %q\n", cfg.Source, cfg.Destination) //nolint:forbidigo
	}

	if cfg.Stats {
		printEncryptStats(result, time.Since(start))
	}

	return nil
}

// RunDecrypt drives one decrypt invocation end to end.
func RunDecrypt(cfg *config.Config) error {
	passphrase, err := secret.ReadPassphrase(false)
	if err != nil {
		return err
	}
	defer secret.Zero(passphrase)

	start := time.Now()

	result, err := pipeline.Decrypt(cfg.Source, cfg.Destination, passphrase)
	if err != nil {
		return err
	}

	if !cfg.Quiet {
		fmt.Printf("Decrypted %q -> %q\n", cfg.Source, cfg.Destination) //nolint:forbidigo
	}

	if cfg.Stats {
		printDecryptStats(result, time.Since(start))
	}

	return nil
}

// loadExcludes merges CLI patterns with a pattern file, when given.
func loadExcludes(cfg *config.Config) ([]string, error) {
	excludes := append([]string{}, cfg.Exclude...)

	if cfg.ExcludeFrom != "" {
		patterns, err := filter.LoadPatterns(cfg.ExcludeFrom)
		if err != nil {
			return nil, fmt.Errorf("loading exclude patterns: %w", err)
		}

		excludes = append(excludes, patterns...)
	}

	return excludes, nil
}

func printEncryptStats(result pipeline.EncryptResult, duration time.Duration) {
	fmt.Fprintf(os.Stderr, "\nStats\n")
	fmt.Fprintf(os.Stderr, "  Scanned:  %d\n", result.Scanned)
	fmt.Fprintf(os.Stderr, "  Packed:   %d\n", result.Packed)
	fmt.Fprintf(os.Stderr, "  Excluded: %d\n", result.Scanned-result.Packed)
	//nolint:gosec // artifact size is always non-negative
	fmt.Fprintf(os.Stderr, "  Size:     %s\n", humanize.IBytes(uint64(max(0, result.ArtifactSize))))
	fmt.Fprintf(os.Stderr, "  Duration: %s\n", duration.Round(time.Millisecond))
}

func printDecryptStats(result pipeline.DecryptResult, duration time.Duration) {
	fmt.Fprintf(os.Stderr, "\nStats\n")
	fmt.Fprintf(os.Stderr, "  Restored: %d\n", result.Restored)
	fmt.Fprintf(os.Stderr, "  Duration: %s\n", duration.Round(time.Millisecond))
}
