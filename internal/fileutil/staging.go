// Package fileutil provides shared file operation helpers.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// Staging stages an output file for atomic creation: bytes are written to a
// temporary file in the destination's directory and renamed onto the final
// path only on Commit. A failed run never leaves a truncated artifact at the
// destination.
type Staging struct {
	// File is the temporary file to write to.
	File *os.File

	tmpName   string
	finalPath string
	committed bool
}

// NewStaging creates a temporary file next to finalPath.
// Caller must defer Cleanup.
func NewStaging(finalPath string) (*Staging, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(finalPath), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file for %q: %w", finalPath, err)
	}

	return &Staging{
		File:      tmpFile,
		tmpName:   tmpFile.Name(),
		finalPath: finalPath,
	}, nil
}

// Commit flushes and closes the temporary file, then renames it onto the
// final path.
func (s *Staging) Commit() error {
	if err := s.File.Sync(); err != nil {
		return fmt.Errorf("flushing %q: %w", s.tmpName, err)
	}

	if err := s.File.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", s.tmpName, err)
	}

	if err := os.Rename(s.tmpName, s.finalPath); err != nil {
		return fmt.Errorf("renaming output to %q: %w", s.finalPath, err)
	}

	s.committed = true

	return nil
}

// Cleanup closes and removes the temporary file when the run did not reach
// Commit. Safe to defer unconditionally.
func (s *Staging) Cleanup() {
	if s.committed {
		return
	}

	s.File.Close()       //nolint:gosec,errcheck // best-effort cleanup
	os.Remove(s.tmpName) //nolint:gosec,errcheck // best-effort cleanup
}

// Size returns the size in bytes of the file at path.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat output %q: %w", path, err)
	}

	return info.Size(), nil
}
