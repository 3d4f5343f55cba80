package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned when an archive entry would resolve outside the
// destination directory, either lexically or through a symlink extracted
// earlier in the stream.
var ErrUnsafePath = errors.New("archive entry escapes the destination directory")

// deferredMode records a directory whose permission bits are applied after
// all entries are restored. Chmodding at creation time would make a recorded
// read-only directory block restoration of its own children.
type deferredMode struct {
	path string
	mode os.FileMode
}

// Unpack reads a tar stream from src and recreates its entries under destDir,
// which must already exist. Directories, regular files, and symlinks are
// restored with their recorded permission bits; colliding paths are
// overwritten. Returns the number of entries restored.
func Unpack(src io.Reader, destDir string) (int, error) {
	tr := tar.NewReader(src)

	var (
		restored int
		dirModes []deferredMode
	)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return restored, fmt.Errorf("reading archive entry: %w", err)
		}

		if err := unpackEntry(tr, header, destDir, &dirModes); err != nil {
			return restored, err
		}

		restored++
	}

	// Directory bits go on last, deepest entries first: tar orders parents
	// before children, so the reverse walk never chmods a path whose
	// parent has already been made read-only.
	for i := len(dirModes) - 1; i >= 0; i-- {
		if err := os.Chmod(dirModes[i].path, dirModes[i].mode); err != nil {
			return restored, fmt.Errorf("setting permissions on %q: %w", dirModes[i].path, err)
		}
	}

	return restored, nil
}

// unpackEntry restores a single archive entry under destDir.
func unpackEntry(tr *tar.Reader, header *tar.Header, destDir string, dirModes *[]deferredMode) error {
	name := filepath.FromSlash(header.Name)
	if !filepath.IsLocal(name) {
		return fmt.Errorf("%w: %q", ErrUnsafePath, header.Name)
	}

	target := filepath.Join(destDir, name)

	// The lexical check above cannot see symlinks restored by earlier
	// entries; verify the target's resolved location as well.
	if err := checkContained(destDir, target); err != nil {
		return err
	}

	mode := header.FileInfo().Mode().Perm()

	switch header.Typeflag {
	case tar.TypeDir:
		if err := removeIfSymlink(target); err != nil {
			return err
		}

		// Created writable so later entries can restore into it; the
		// recorded bits are applied once the whole stream is unpacked.
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("creating directory %q: %w", target, err)
		}

		*dirModes = append(*dirModes, deferredMode{path: target, mode: mode})

	case tar.TypeReg:
		if err := restoreFile(tr, target, mode); err != nil {
			return err
		}

	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating parent of %q: %w", target, err)
		}

		// Overwrite policy: replace an existing entry at the target.
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("replacing %q: %w", target, err)
		}

		if err := os.Symlink(header.Linkname, target); err != nil {
			return fmt.Errorf("creating symlink %q: %w", target, err)
		}

	default:
		return fmt.Errorf("unsupported archive entry type %q for %q", header.Typeflag, header.Name)
	}

	return nil
}

// checkContained verifies that the deepest existing ancestor of target still
// resolves inside destDir once symlinks are followed. Components below that
// ancestor do not exist yet, so nothing can redirect their creation.
func checkContained(destDir, target string) error {
	base, err := filepath.EvalSymlinks(destDir)
	if err != nil {
		return fmt.Errorf("resolving destination %q: %w", destDir, err)
	}

	ancestor := filepath.Dir(target)
	for {
		if _, err := os.Lstat(ancestor); err == nil {
			break
		}

		ancestor = filepath.Dir(ancestor)
	}

	resolved, err := filepath.EvalSymlinks(ancestor)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", ancestor, err)
	}

	if resolved != base && !strings.HasPrefix(resolved, base+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q", ErrUnsafePath, target)
	}

	return nil
}

// removeIfSymlink removes a symlink occupying an entry's target path, so
// creation cannot be redirected through it.
func removeIfSymlink(target string) error {
	info, err := os.Lstat(target)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return nil
	}

	if err := os.Remove(target); err != nil {
		return fmt.Errorf("replacing %q: %w", target, err)
	}

	return nil
}

// restoreFile writes a regular file's contents and exact permission bits.
func restoreFile(tr *tar.Reader, target string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating parent of %q: %w", target, err)
	}

	if err := removeIfSymlink(target); err != nil {
		return err
	}

	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode) //nolint:gosec // target is confined to destDir
	if err != nil {
		return fmt.Errorf("creating %q: %w", target, err)
	}

	if _, err := io.Copy(file, tr); err != nil { //nolint:gosec // tar reader bounds each entry
		file.Close()

		return fmt.Errorf("restoring contents of %q: %w", target, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", target, err)
	}

	// OpenFile's mode is subject to umask and ignored for existing files.
	if err := os.Chmod(target, mode); err != nil {
		return fmt.Errorf("setting permissions on %q: %w", target, err)
	}

	return nil
}
