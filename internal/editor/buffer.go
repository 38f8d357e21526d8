// Package editor is the host side of an editing session: an in-memory buffer
// visiting one file, with the persistence, prompting and save-dispatch hooks
// the lifecycle controller drives.
package editor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/ordo/internal/document"
	kerrors "github.com/PolarWolf314/ordo/internal/errors"
	logger "github.com/PolarWolf314/ordo/internal/logging"
	"github.com/PolarWolf314/ordo/internal/prompt"
	"github.com/PolarWolf314/ordo/internal/storage"
	"github.com/PolarWolf314/ordo/internal/utils"
)

// Options configures a Buffer.
type Options struct {
	// AutosaveInterval is the number of edits between auto-saves. Zero disables auto-save.
	AutosaveInterval int
}

// Buffer is one editing session. It is not safe for concurrent use.
type Buffer struct {
	doc     document.Document
	content []byte

	store  storage.Storage
	prompt prompt.Prompter
	log    logger.Logger

	savers map[document.Handle]document.Saver

	autosaveOn       bool
	autosaveInterval int
	editsSinceSave   int
}

// New returns an empty buffer visiting no file.
func New(store storage.Storage, p prompt.Prompter, log logger.Logger, opts Options) *Buffer {
	return &Buffer{
		doc:              document.Document{Format: "text"},
		store:            store,
		prompt:           p,
		log:              log,
		savers:           make(map[document.Handle]document.Saver),
		autosaveOn:       opts.AutosaveInterval > 0,
		autosaveInterval: opts.AutosaveInterval,
	}
}

// Document returns the session's document record.
func (b *Buffer) Document() *document.Document {
	return &b.doc
}

func (b *Buffer) Storage() storage.Storage {
	return b.store
}

func (b *Buffer) Prompter() prompt.Prompter {
	return b.prompt
}

// Visit reads path into the buffer and makes it the buffer's file. A missing
// file gives an empty buffer for a new file.
func (b *Buffer) Visit(path string) error {
	data, err := b.store.ReadFile(path)
	exists := true
	if errors.Is(err, kerrors.ErrFileNotFound) {
		data, exists, err = nil, false, nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	b.content = data
	b.doc = document.Document{StoragePath: path}
	b.DetectMode(path)
	if exists {
		info, err := b.store.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		b.doc.ModTime = info.ModTime
		b.doc.ReadOnly = !info.Writable()
	}
	b.editsSinceSave = 0
	b.log.Debugf("Visited %s (%d bytes, new=%t, read-only=%t)", path, len(data), !exists, b.doc.ReadOnly)

	return nil
}

// Content returns a copy of the buffer content.
func (b *Buffer) Content() []byte {
	return append([]byte(nil), b.content...)
}

// ReplaceContent replaces the whole buffer and marks it modified.
func (b *Buffer) ReplaceContent(data []byte) {
	b.content = append([]byte(nil), data...)
	b.doc.Dirty = true
}

// Rebind changes the buffer's file without touching disk.
func (b *Buffer) Rebind(path string) {
	b.doc.StoragePath = path
	b.doc.LogicalName = path
	b.doc.ModTime = time.Time{}
}

// DetectMode re-runs format detection using name in place of the file name.
func (b *Buffer) DetectMode(name string) {
	b.doc.LogicalName = name
	b.doc.Format = DetectFormat(name)
}

// SetAutoSave turns auto-saving of the plaintext buffer on or off.
func (b *Buffer) SetAutoSave(enabled bool) {
	b.autosaveOn = enabled && b.autosaveInterval > 0
	b.editsSinceSave = 0
}

// AutoSaveEnabled reports whether edits may trigger an auto-save.
func (b *Buffer) AutoSaveEnabled() bool {
	return b.autosaveOn
}

// AutoSavePath is where auto-save writes the buffer: #name# next to the file.
func (b *Buffer) AutoSavePath() string {
	if b.doc.StoragePath == "" {
		return ""
	}
	dir, base := filepath.Split(b.doc.StoragePath)
	return filepath.Join(dir, "#"+base+"#")
}

// InstallSaver makes s handle every save of this buffer until removed.
func (b *Buffer) InstallSaver(s document.Saver) document.Handle {
	h := document.NewHandle()
	b.savers[h] = s
	return h
}

// RemoveSaver uninstalls the saver registered under h.
func (b *Buffer) RemoveSaver(h document.Handle) error {
	if _, ok := b.savers[h]; !ok {
		return fmt.Errorf("%w: %s", kerrors.ErrUnknownHandle, h)
	}
	delete(b.savers, h)
	return nil
}

func (b *Buffer) saver() document.Saver {
	var found document.Saver
	for _, s := range b.savers {
		found = s
	}
	return found
}

// Handles returns the number of installed savers.
func (b *Buffer) Handles() int {
	return len(b.savers)
}

// Save saves the buffer through the installed saver, or writes it as plain
// text when none is installed. If the file changed on disk since it was
// read or written, the user confirms first.
func (b *Buffer) Save(ctx context.Context) error {
	if err := b.confirmIfChangedOnDisk(); err != nil {
		return err
	}
	if s := b.saver(); s != nil {
		return s.Save(ctx)
	}
	return b.SavePlain(ctx)
}

// SavePlain writes the buffer content unencrypted to its file, asking for a
// file name when the buffer has none.
func (b *Buffer) SavePlain(ctx context.Context) error {
	if b.doc.StoragePath == "" {
		path, err := b.prompt.Line("File to save in:", "")
		if err != nil {
			return err
		}
		if path == "" {
			return kerrors.ErrNoTargetIdentity
		}
		b.Rebind(path)
		b.DetectMode(path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := b.doc.StoragePath
	if err := b.store.WriteFile(path, b.content); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	b.MarkSaved()
	b.removeAutoSave()
	b.log.Infof("Wrote %s", path)

	return nil
}

// MarkSaved clears the modified flag and records the file's current
// modification time, so the next save does not mistake our own write for an
// external change.
func (b *Buffer) MarkSaved() {
	b.doc.Dirty = false
	b.editsSinceSave = 0
	if info, err := b.store.Stat(b.doc.StoragePath); err == nil {
		b.doc.ModTime = info.ModTime
	}
}

func (b *Buffer) confirmIfChangedOnDisk() error {
	path := b.doc.StoragePath
	if path == "" || b.doc.ModTime.IsZero() {
		return nil
	}
	info, err := b.store.Stat(path)
	if err != nil || info.ModTime.Equal(b.doc.ModTime) {
		return nil
	}
	ok, err := b.prompt.Confirm(fmt.Sprintf("%s has changed since visited or saved; save anyway?", filepath.Base(path)))
	if err != nil {
		return err
	}
	if !ok {
		return kerrors.ErrCancelled
	}
	return nil
}

// Lines returns the buffer split into lines.
func (b *Buffer) Lines() []string {
	return utils.SplitLines(b.content)
}

// Append adds lines at the end of the buffer.
func (b *Buffer) Append(lines ...string) error {
	return b.Insert(len(b.Lines())+1, lines...)
}

// Insert adds lines before line n (1-based). n may be one past the last line.
func (b *Buffer) Insert(n int, lines ...string) error {
	current := b.Lines()
	if n < 1 || n > len(current)+1 {
		return fmt.Errorf("%w: %d", kerrors.ErrInvalidLine, n)
	}
	out := make([]string, 0, len(current)+len(lines))
	out = append(out, current[:n-1]...)
	out = append(out, lines...)
	out = append(out, current[n-1:]...)
	return b.edit(out)
}

// Change replaces line n (1-based).
func (b *Buffer) Change(n int, line string) error {
	current := b.Lines()
	if n < 1 || n > len(current) {
		return fmt.Errorf("%w: %d", kerrors.ErrInvalidLine, n)
	}
	current[n-1] = line
	return b.edit(current)
}

// Delete removes line n (1-based).
func (b *Buffer) Delete(n int) error {
	current := b.Lines()
	if n < 1 || n > len(current) {
		return fmt.Errorf("%w: %d", kerrors.ErrInvalidLine, n)
	}
	return b.edit(append(current[:n-1], current[n:]...))
}

// SetText replaces the buffer with lines as a user edit.
func (b *Buffer) SetText(lines []string) error {
	return b.edit(lines)
}

func (b *Buffer) edit(lines []string) error {
	if b.doc.ReadOnly {
		return kerrors.ErrReadOnly
	}
	b.content = utils.JoinLines(lines)
	b.doc.Dirty = true
	b.editsSinceSave++
	b.maybeAutoSave()
	return nil
}

func (b *Buffer) maybeAutoSave() {
	if !b.autosaveOn || b.doc.Transparent() || b.editsSinceSave < b.autosaveInterval {
		return
	}
	path := b.AutoSavePath()
	if path == "" {
		return
	}
	b.editsSinceSave = 0
	if err := b.store.WriteFile(path, b.content); err != nil {
		b.log.WarnfAlways("Auto-save to %s failed: %v", path, err)
		return
	}
	b.log.Debugf("Auto-saved %s", path)
}

func (b *Buffer) removeAutoSave() {
	if path := b.AutoSavePath(); path != "" {
		if err := b.store.Remove(path); err != nil {
			b.log.Debugf("Could not remove auto-save file %s: %v", path, err)
		}
	}
}
