package pipeline_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/castroofelipee/folder-lock/internal/crypt"
	"github.com/castroofelipee/folder-lock/internal/pipeline"
)

// writeTree materializes a directory tree exercising every entry kind the
// pipeline must round-trip: nested directories, an empty directory, files
// with different permission bits, and a symlink.
func writeTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	if err := os.MkdirAll(filepath.Join(root, "sub", "deeper"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.Mkdir(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "sub", "deeper", "data.bin"), make([]byte, 1<<16), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "tool.sh"), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := os.Symlink("a.txt", filepath.Join(root, "alias")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	// WriteFile perms are subject to umask; pin the bits the tests assert.
	for rel, perm := range map[string]os.FileMode{"a.txt": 0o644, "tool.sh": 0o755} {
		if err := os.Chmod(filepath.Join(root, rel), perm); err != nil {
			t.Fatalf("chmod: %v", err)
		}
	}

	return root
}

// assertEmpty fails unless dir contains no entries.
func assertEmpty(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %q: %v", dir, err)
	}

	if len(entries) != 0 {
		t.Errorf("%q contains %d entries, want none", dir, len(entries))
	}
}

func TestRoundTripIdentity(t *testing.T) {
	t.Parallel()

	source := writeTree(t)
	artifact := filepath.Join(t.TempDir(), "tree.age")
	passphrase := []byte("correct-horse")

	encResult, err := pipeline.Encrypt(source, artifact, passphrase, pipeline.EncryptOptions{})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if encResult.Packed == 0 || encResult.ArtifactSize == 0 {
		t.Fatalf("implausible result: %+v", encResult)
	}

	dest := t.TempDir()

	decResult, err := pipeline.Decrypt(artifact, dest, passphrase)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	if decResult.Restored != encResult.Packed {
		t.Errorf("restored %d entries, packed %d", decResult.Restored, encResult.Packed)
	}

	for _, tt := range []struct {
		rel     string
		content string
		perm    os.FileMode
	}{
		{"a.txt", "hello", 0o644},
		{"tool.sh", "#!/bin/sh\nexit 0\n", 0o755},
	} {
		data, err := os.ReadFile(filepath.Join(dest, tt.rel))
		if err != nil {
			t.Fatalf("reading %q: %v", tt.rel, err)
		}

		if string(data) != tt.content {
			t.Errorf("%q content = %q, want %q", tt.rel, data, tt.content)
		}

		info, err := os.Stat(filepath.Join(dest, tt.rel))
		if err != nil {
			t.Fatalf("stat %q: %v", tt.rel, err)
		}

		if perm := info.Mode().Perm(); perm != tt.perm {
			t.Errorf("%q perm = %o, want %o", tt.rel, perm, tt.perm)
		}
	}

	big, err := os.ReadFile(filepath.Join(dest, "sub", "deeper", "data.bin"))
	if err != nil {
		t.Fatalf("reading nested file: %v", err)
	}

	if len(big) != 1<<16 {
		t.Errorf("nested file length = %d, want %d", len(big), 1<<16)
	}

	if info, err := os.Stat(filepath.Join(dest, "empty")); err != nil || !info.IsDir() {
		t.Errorf("empty directory not restored: %v", err)
	}

	if target, err := os.Readlink(filepath.Join(dest, "alias")); err != nil || target != "a.txt" {
		t.Errorf("symlink not restored: target=%q err=%v", target, err)
	}
}

func TestWrongPassphraseRejected(t *testing.T) {
	t.Parallel()

	source := writeTree(t)
	artifact := filepath.Join(t.TempDir(), "tree.age")

	if _, err := pipeline.Encrypt(source, artifact, []byte("correct-horse"), pipeline.EncryptOptions{}); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	dest := t.TempDir()

	_, err := pipeline.Decrypt(artifact, dest, []byte("wrong"))
	if !errors.Is(err, crypt.ErrAuthentication) {
		t.Errorf("Decrypt error = %v, want ErrAuthentication", err)
	}

	assertEmpty(t, dest)
}

func TestTamperRejected(t *testing.T) {
	t.Parallel()

	source := writeTree(t)
	artifact := filepath.Join(t.TempDir(), "tree.age")
	passphrase := []byte("correct-horse")

	if _, err := pipeline.Encrypt(source, artifact, passphrase, pipeline.EncryptOptions{}); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	original, err := os.ReadFile(artifact)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}

	// Flip a single byte at representative offsets: header, payload
	// middle, and final authentication chunk.
	for _, offset := range []int{0, len(original) / 2, len(original) - 1} {
		tampered := append([]byte(nil), original...)
		tampered[offset] ^= 0x01

		mutated := filepath.Join(t.TempDir(), "tampered.age")
		if err := os.WriteFile(mutated, tampered, 0o600); err != nil {
			t.Fatalf("writing tampered artifact: %v", err)
		}

		if _, err := pipeline.Decrypt(mutated, t.TempDir(), passphrase); err == nil {
			t.Errorf("Decrypt of artifact tampered at offset %d succeeded, want error", offset)
		}
	}
}

func TestEmptyPassphraseRejected(t *testing.T) {
	t.Parallel()

	source := writeTree(t)
	artifact := filepath.Join(t.TempDir(), "tree.age")

	_, err := pipeline.Encrypt(source, artifact, nil, pipeline.EncryptOptions{})
	if !errors.Is(err, pipeline.ErrEmptyPassphrase) {
		t.Errorf("Encrypt error = %v, want ErrEmptyPassphrase", err)
	}

	if _, err := os.Stat(artifact); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Encrypt with empty passphrase created %q", artifact)
	}

	_, err = pipeline.Decrypt(artifact, t.TempDir(), nil)
	if !errors.Is(err, pipeline.ErrEmptyPassphrase) {
		t.Errorf("Decrypt error = %v, want ErrEmptyPassphrase", err)
	}
}

func TestEncryptSourceMustBeDirectory(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	artifact := filepath.Join(t.TempDir(), "out.age")

	_, err := pipeline.Encrypt(file, artifact, []byte("pw"), pipeline.EncryptOptions{})
	if !errors.Is(err, pipeline.ErrNotADirectory) {
		t.Errorf("Encrypt error = %v, want ErrNotADirectory", err)
	}

	if _, err := os.Stat(artifact); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("failed Encrypt created %q", artifact)
	}
}

func TestDecryptDestinationMustExist(t *testing.T) {
	t.Parallel()

	source := writeTree(t)
	artifact := filepath.Join(t.TempDir(), "tree.age")
	passphrase := []byte("pw")

	if _, err := pipeline.Encrypt(source, artifact, passphrase, pipeline.EncryptOptions{}); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	missing := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := pipeline.Decrypt(artifact, missing, passphrase)
	if !errors.Is(err, pipeline.ErrDestinationMissing) {
		t.Errorf("Decrypt error = %v, want ErrDestinationMissing", err)
	}

	if _, err := os.Stat(missing); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("failed Decrypt created %q", missing)
	}
}

func TestHelloScenario(t *testing.T) {
	t.Parallel()

	source := t.TempDir()
	if err := os.WriteFile(filepath.Join(source, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	artifact := filepath.Join(t.TempDir(), "a.age")

	if _, err := pipeline.Encrypt(source, artifact, []byte("correct-horse"), pipeline.EncryptOptions{}); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	good := t.TempDir()

	if _, err := pipeline.Decrypt(artifact, good, []byte("correct-horse")); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(good, "a.txt"))
	if err != nil {
		t.Fatalf("reading restored file: %v", err)
	}

	if string(data) != "hello" {
		t.Errorf("restored content = %q, want %q", data, "hello")
	}

	bad := t.TempDir()

	if _, err := pipeline.Decrypt(artifact, bad, []byte("wrong")); err == nil {
		t.Fatal("Decrypt with wrong passphrase succeeded")
	}

	assertEmpty(t, bad)
}

func TestEncryptExcludePatterns(t *testing.T) {
	t.Parallel()

	source := writeTree(t)
	artifact := filepath.Join(t.TempDir(), "tree.age")
	passphrase := []byte("pw")

	opts := pipeline.EncryptOptions{Exclude: []string{"*.sh", "sub"}}

	result, err := pipeline.Encrypt(source, artifact, passphrase, opts)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if result.Packed >= result.Scanned {
		t.Errorf("expected exclusions: packed=%d scanned=%d", result.Packed, result.Scanned)
	}

	dest := t.TempDir()

	if _, err := pipeline.Decrypt(artifact, dest, passphrase); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	for _, rel := range []string{"tool.sh", "sub"} {
		if _, err := os.Lstat(filepath.Join(dest, rel)); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("excluded entry %q was restored", rel)
		}
	}

	if _, err := os.Stat(filepath.Join(dest, "a.txt")); err != nil {
		t.Errorf("included entry missing: %v", err)
	}
}

func TestFailedEncryptLeavesNoArtifact(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("permission failures are not observable as root")
	}

	source := writeTree(t)

	// An unreadable file makes the pack stage fail mid-pipeline.
	if err := os.Chmod(filepath.Join(source, "a.txt"), 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	outDir := t.TempDir()
	artifact := filepath.Join(outDir, "tree.age")

	if _, err := pipeline.Encrypt(source, artifact, []byte("pw"), pipeline.EncryptOptions{}); err == nil {
		t.Fatal("Encrypt with unreadable source file succeeded")
	}

	// Neither the artifact nor a stray temp file may remain.
	assertEmpty(t, outDir)
}

func TestEncryptInvalidExcludePattern(t *testing.T) {
	t.Parallel()

	source := writeTree(t)
	artifact := filepath.Join(t.TempDir(), "tree.age")

	opts := pipeline.EncryptOptions{Exclude: []string{"[unclosed"}}

	if _, err := pipeline.Encrypt(source, artifact, []byte("pw"), opts); err == nil {
		t.Error("Encrypt with invalid exclude pattern succeeded")
	}
}
