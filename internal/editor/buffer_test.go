package editor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PolarWolf314/ordo/internal/document"
	kerrors "github.com/PolarWolf314/ordo/internal/errors"
	logger "github.com/PolarWolf314/ordo/internal/logging"
	"github.com/PolarWolf314/ordo/internal/prompt"
	"github.com/PolarWolf314/ordo/internal/storage"
)

func newTestBuffer(t *testing.T, input string, opts Options) *Buffer {
	t.Helper()
	p := prompt.New(strings.NewReader(input), &bytes.Buffer{})
	return New(storage.OS{}, p, logger.Logger{}, opts)
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]string{
		"notes.md":         "markdown",
		"/tmp/a/b.org":     "org",
		"config.YML":       "yaml",
		"Makefile":         "text",
		"archive.tar":      "tar",
		"secret.env":       "dotenv",
		"dir.d/readme.txt": "text",
	}
	for name, want := range tests {
		if got := DetectFormat(name); got != want {
			t.Errorf("DetectFormat(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestVisitExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(path, []byte("hello\n"), 0600); err != nil {
		t.Fatal(err)
	}
	b := newTestBuffer(t, "", Options{})

	if err := b.Visit(path); err != nil {
		t.Fatalf("Visit failed: %v", err)
	}
	doc := b.Document()
	if doc.StoragePath != path || doc.Format != "markdown" {
		t.Errorf("document = %+v", doc)
	}
	if doc.ModTime.IsZero() {
		t.Error("ModTime not recorded")
	}
	if doc.Dirty || doc.ReadOnly {
		t.Errorf("flags = %+v, want clean and writable", doc.Flags())
	}
	if string(b.Content()) != "hello\n" {
		t.Errorf("content = %q", b.Content())
	}
}

func TestVisitNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.txt")
	b := newTestBuffer(t, "", Options{})

	if err := b.Visit(path); err != nil {
		t.Fatalf("Visit failed: %v", err)
	}
	if len(b.Content()) != 0 {
		t.Errorf("new file content = %q, want empty", b.Content())
	}
	if !b.Document().ModTime.IsZero() {
		t.Error("new file has a ModTime")
	}
}

func TestLineEdits(t *testing.T) {
	b := newTestBuffer(t, "", Options{})

	if err := b.Append("one", "three"); err != nil {
		t.Fatal(err)
	}
	if err := b.Insert(2, "two"); err != nil {
		t.Fatal(err)
	}
	if err := b.Change(3, "THREE"); err != nil {
		t.Fatal(err)
	}
	if err := b.Delete(1); err != nil {
		t.Fatal(err)
	}
	if got := string(b.Content()); got != "two\nTHREE\n" {
		t.Errorf("content = %q", got)
	}
	if !b.Document().Dirty {
		t.Error("buffer not marked modified")
	}

	for _, n := range []int{0, 3} {
		if err := b.Change(n, "x"); !errors.Is(err, kerrors.ErrInvalidLine) {
			t.Errorf("Change(%d) = %v, want ErrInvalidLine", n, err)
		}
	}
}

func TestReadOnlyRefusesEdits(t *testing.T) {
	b := newTestBuffer(t, "", Options{})
	b.Document().ReadOnly = true

	if err := b.Append("x"); !errors.Is(err, kerrors.ErrReadOnly) {
		t.Errorf("Append on read-only buffer = %v, want ErrReadOnly", err)
	}
}

func TestSavePlainWritesAndClearsDirty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.txt")
	b := newTestBuffer(t, "", Options{})
	if err := b.Visit(path); err != nil {
		t.Fatal(err)
	}
	_ = b.Append("content")

	if err := b.Save(context.Background()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "content\n" {
		t.Errorf("file = %q", data)
	}
	if b.Document().Dirty {
		t.Error("buffer still modified after save")
	}
}

func TestSavePlainPromptsForName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "named.md")
	b := newTestBuffer(t, path+"\n", Options{})
	_ = b.Append("x")

	if err := b.Save(context.Background()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if b.Document().StoragePath != path || b.Document().Format != "markdown" {
		t.Errorf("document = %+v", b.Document())
	}
}

func TestSaveDispatchesToSaver(t *testing.T) {
	b := newTestBuffer(t, "", Options{})
	called := 0
	h := b.InstallSaver(document.SaverFunc(func(ctx context.Context) error {
		called++
		return nil
	}))

	if err := b.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if called != 1 {
		t.Errorf("saver called %d times, want 1", called)
	}
	if err := b.RemoveSaver(h); err != nil {
		t.Fatal(err)
	}
	if err := b.RemoveSaver(h); !errors.Is(err, kerrors.ErrUnknownHandle) {
		t.Errorf("second RemoveSaver = %v, want ErrUnknownHandle", err)
	}
	if b.Handles() != 0 {
		t.Errorf("Handles = %d, want 0", b.Handles())
	}
}

func TestSaveConfirmsExternalChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.txt")
	if err := os.WriteFile(path, []byte("v1\n"), 0600); err != nil {
		t.Fatal(err)
	}
	b := newTestBuffer(t, "no\n", Options{})
	if err := b.Visit(path); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	_ = b.Append("v2")

	if err := b.Save(context.Background()); !errors.Is(err, kerrors.ErrCancelled) {
		t.Fatalf("Save = %v, want ErrCancelled", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "v1\n" {
		t.Errorf("file overwritten: %q", data)
	}
}

func TestAutoSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.txt")
	b := newTestBuffer(t, "", Options{AutosaveInterval: 2})
	if err := b.Visit(path); err != nil {
		t.Fatal(err)
	}
	auto := filepath.Join(dir, "#draft.txt#")

	_ = b.Append("a")
	if _, err := os.Stat(auto); err == nil {
		t.Fatal("auto-saved after one edit")
	}
	_ = b.Append("b")
	data, err := os.ReadFile(auto)
	if err != nil {
		t.Fatalf("auto-save file missing: %v", err)
	}
	if string(data) != "a\nb\n" {
		t.Errorf("auto-save content = %q", data)
	}

	if err := b.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(auto); !os.IsNotExist(err) {
		t.Error("auto-save file not removed after save")
	}
}

func TestAutoSaveSkippedWhenTransparent(t *testing.T) {
	dir := t.TempDir()
	b := newTestBuffer(t, "", Options{AutosaveInterval: 1})
	if err := b.Visit(filepath.Join(dir, "secret.txt")); err != nil {
		t.Fatal(err)
	}
	b.Document().Mode = document.Transparent

	_ = b.Append("secret")
	if _, err := os.Stat(filepath.Join(dir, "#secret.txt#")); err == nil {
		t.Error("plaintext auto-saved for a transparent document")
	}

	b.Document().Mode = document.Plain
	b.SetAutoSave(false)
	_ = b.Append("more")
	if _, err := os.Stat(filepath.Join(dir, "#secret.txt#")); err == nil {
		t.Error("auto-saved with auto-save disabled")
	}
}
