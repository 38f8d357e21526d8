package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/absfs/memfs"

	kerrors "github.com/PolarWolf314/ordo/internal/errors"
)

func TestOSWriteAndRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secret.gpg")
	var s OS

	if err := s.WriteFile(path, []byte("first")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := s.WriteFile(path, []byte("second")); err != nil {
		t.Fatalf("WriteFile overwrite failed: %v", err)
	}

	data, err := s.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("ReadFile = %q, want %q", data, "second")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file in %s, found %d entries", dir, len(entries))
	}
}

func TestOSNewFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.ordo")
	var s OS

	if err := s.WriteFile(path, []byte("x")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	info, err := s.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode.Perm() != 0600 {
		t.Errorf("new file mode = %o, want 600", info.Mode.Perm())
	}
}

func TestOSKeepsExistingMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.gpg")
	if err := os.WriteFile(path, []byte("old"), 0640); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	var s OS
	if err := s.WriteFile(path, []byte("new")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	info, err := s.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode.Perm() != 0640 {
		t.Errorf("mode = %o, want 640", info.Mode.Perm())
	}
}

func TestOSWriteFollowsSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real", "notes.gpg")
	if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "notes.gpg")
	if err := os.Symlink(filepath.Join("real", "notes.gpg"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	var s OS
	if err := s.WriteFile(link, []byte("new")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	fi, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		t.Error("symlink replaced by a regular file")
	}
	if data, _ := os.ReadFile(target); string(data) != "new" {
		t.Errorf("link target = %q, want new content", data)
	}
}

func TestOSWriteDanglingSymlinkCreatesTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "created.ordo")
	link := filepath.Join(dir, "link.ordo")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	var s OS
	if err := s.WriteFile(link, []byte("x")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if data, err := os.ReadFile(target); err != nil || string(data) != "x" {
		t.Errorf("target = %q, %v", data, err)
	}
}

func TestOSWriteToDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	var s OS
	if err := s.WriteFile(dir, []byte("x")); err == nil {
		t.Fatal("expected error writing over a directory")
	}
}

func TestOSWriteFailureLeavesOldContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secret.gpg")
	if err := os.WriteFile(path, []byte("old ciphertext"), 0600); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if os.Getuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	if err := os.Chmod(dir, 0500); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}
	defer os.Chmod(dir, 0700)

	var s OS
	if err := s.WriteFile(path, []byte("new ciphertext")); err == nil {
		t.Fatal("expected write into read-only directory to fail")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "old ciphertext" {
		t.Errorf("content changed after failed write: %q", data)
	}
}

func TestOSMissingFile(t *testing.T) {
	var s OS
	path := filepath.Join(t.TempDir(), "missing.gpg")

	if _, err := s.ReadFile(path); !errors.Is(err, kerrors.ErrFileNotFound) {
		t.Errorf("ReadFile error = %v, want ErrFileNotFound", err)
	}
	if _, err := s.Stat(path); !errors.Is(err, kerrors.ErrFileNotFound) {
		t.Errorf("Stat error = %v, want ErrFileNotFound", err)
	}
	if !errors.Is(func() error { _, err := s.Stat(path); return err }(), os.ErrNotExist) {
		t.Error("Stat error should still match os.ErrNotExist")
	}
	if s.Exists(path) {
		t.Error("Exists should be false for a missing file")
	}
	if err := s.Remove(path); err != nil {
		t.Errorf("Remove of a missing file should succeed, got %v", err)
	}
}

func TestFSWriteAndRead(t *testing.T) {
	base, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("memfs.NewFS failed: %v", err)
	}
	s := NewFS(base)

	if s.Exists("/secret.ordo") {
		t.Fatal("file should not exist yet")
	}
	if err := s.WriteFile("/secret.ordo", []byte("one")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := s.WriteFile("/secret.ordo", []byte("two")); err != nil {
		t.Fatalf("WriteFile overwrite failed: %v", err)
	}

	data, err := s.ReadFile("/secret.ordo")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(data, []byte("two")) {
		t.Errorf("ReadFile = %q, want %q", data, "two")
	}
	if !s.Exists("/secret.ordo") {
		t.Error("Exists should be true after write")
	}
	if s.Exists("/secret.ordo.ordo-tmp") {
		t.Error("temporary file left behind")
	}

	info, err := s.Stat("/secret.ordo")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.IsDir || info.Size != 3 {
		t.Errorf("unexpected info: %+v", info)
	}

	if err := s.Remove("/secret.ordo"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if s.Exists("/secret.ordo") {
		t.Error("file still exists after Remove")
	}
}
