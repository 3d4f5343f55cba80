package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// PackStats reports what a Pack call saw and wrote.
type PackStats struct {
	// Scanned counts every entry visited under the root.
	Scanned int

	// Packed counts entries actually written to the archive.
	Packed int
}

// Pack writes every entry under root into dst as a tar stream, with paths
// relative to root. The root itself is not recorded. Entries for which skip
// returns true are left out; a skipped directory prunes its whole subtree.
//
// Pack finalizes the tar stream (writes the end-of-archive marker) before
// returning, but never closes dst — the caller owns the stages beneath.
func Pack(dst io.Writer, root string, skip func(rel string) bool) (PackStats, error) {
	var stats PackStats

	tw := tar.NewWriter(dst)

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativizing %q: %w", path, err)
		}

		if rel == "." {
			return nil
		}

		rel = filepath.ToSlash(rel)
		stats.Scanned++

		if skip != nil && skip(rel) {
			if entry.IsDir() {
				return fs.SkipDir
			}

			return nil
		}

		if err := packEntry(tw, path, rel, entry); err != nil {
			return err
		}

		stats.Packed++

		return nil
	})
	if walkErr != nil {
		return stats, fmt.Errorf("archiving %q: %w", root, walkErr)
	}

	if err := tw.Close(); err != nil {
		return stats, fmt.Errorf("finalizing archive: %w", err)
	}

	return stats, nil
}

// packEntry writes one tar header (and file contents, for regular files).
func packEntry(tw *tar.Writer, path, rel string, entry fs.DirEntry) error {
	info, err := entry.Info()
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}

	var linkTarget string

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		linkTarget, err = os.Readlink(path)
		if err != nil {
			return fmt.Errorf("reading symlink %q: %w", path, err)
		}

	case !info.Mode().IsRegular() && !info.IsDir():
		return fmt.Errorf("unsupported entry type at %q (mode %s)", path, info.Mode())
	}

	header, err := tar.FileInfoHeader(info, linkTarget)
	if err != nil {
		return fmt.Errorf("building header for %q: %w", path, err)
	}

	header.Name = rel
	if info.IsDir() {
		header.Name += "/"
	}

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("writing header for %q: %w", rel, err)
	}

	if !info.Mode().IsRegular() {
		return nil
	}

	file, err := os.Open(path) //nolint:gosec // path comes from walking the user-chosen root
	if err != nil {
		return fmt.Errorf("opening %q: %w", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(tw, file); err != nil {
		return fmt.Errorf("archiving contents of %q: %w", rel, err)
	}

	return nil
}
