package lifecycle

import (
	"context"

	"github.com/PolarWolf314/ordo/internal/document"
	"github.com/PolarWolf314/ordo/internal/prompt"
	"github.com/PolarWolf314/ordo/internal/storage"
)

// Session is the editing session a Controller drives. editor.Buffer
// implements it.
type Session interface {
	// Document returns the session's document record for in-place updates.
	Document() *document.Document

	// Content returns a copy of the in-memory content.
	Content() []byte

	// ReplaceContent swaps the whole in-memory content.
	ReplaceContent(data []byte)

	// Storage is where the session's file lives.
	Storage() storage.Storage

	Prompter() prompt.Prompter

	// Visit reads path into the session and makes it the session's file.
	Visit(path string) error

	// Rebind changes the on-disk identity without touching disk.
	Rebind(path string)

	// DetectMode re-runs format detection against name instead of the file name.
	DetectMode(name string)

	// SetAutoSave turns background plaintext persistence on or off.
	SetAutoSave(enabled bool)

	InstallSaver(s document.Saver) document.Handle
	RemoveSaver(h document.Handle) error
	Handles() int

	// SavePlain performs the host's ordinary unencrypted save.
	SavePlain(ctx context.Context) error

	// MarkSaved records that the file on disk matches the buffer.
	MarkSaved()
}
