package workflows

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	kerrors "github.com/PolarWolf314/ordo/internal/errors"
	logger "github.com/PolarWolf314/ordo/internal/logging"
)

func writeTree(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
}

func listEnv() Env {
	return Env{Config: testConfig(), Log: logger.Logger{}}
}

func listedPaths(result *ListResult) []string {
	var paths []string
	for _, f := range result.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

func TestListDefaultFindsNestedEncryptedFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.md.ordo", "notes.txt", "deep/dir/b.gpg", "deep/c.pgp", "deep/d.json")

	result, err := List(listEnv(), ListOptions{Root: root})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{
		filepath.Join(root, "a.md.ordo"),
		filepath.Join(root, "deep/c.pgp"),
		filepath.Join(root, "deep/dir/b.gpg"),
	}
	got := listedPaths(result)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d = %q, want %q", i, got[i], want[i])
		}
	}

	first := result.Files[0]
	if first.LogicalName != filepath.Join(root, "a.md") || first.Format != "markdown" || first.Backend != "ordo" {
		t.Errorf("first = %+v", first)
	}
	if result.Files[1].Backend != "openpgp" {
		t.Errorf("pgp backend = %q", result.Files[1].Backend)
	}
}

func TestListGlobFiltersUnrecognized(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "env/.env.ordo", "env/.env", "env/sub/prod.env.gpg")

	result, err := List(listEnv(), ListOptions{Root: root, Patterns: []string{"env/**/*"}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if got := listedPaths(result); len(got) != 2 {
		t.Errorf("got %v, want the two encrypted files", got)
	}
}

func TestListDeduplicates(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.ordo")

	result, err := List(listEnv(), ListOptions{Root: root, Patterns: []string{"a.ordo", "*.ordo", "."}})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Files) != 1 {
		t.Errorf("got %v, want one file", listedPaths(result))
	}
}

func TestListLiteralErrors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "plain.txt")

	_, err := List(listEnv(), ListOptions{Root: root, Patterns: []string{"missing.ordo"}})
	if !errors.Is(err, kerrors.ErrFileNotFound) {
		t.Errorf("missing file: got %v, want ErrFileNotFound", err)
	}

	_, err = List(listEnv(), ListOptions{Root: root, Patterns: []string{"plain.txt"}})
	if err == nil {
		t.Error("expected error for a file without an encrypted suffix")
	}
}

func TestListEmptyDirectory(t *testing.T) {
	result, err := List(listEnv(), ListOptions{Root: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Files) != 0 {
		t.Errorf("got %v, want none", listedPaths(result))
	}
}
