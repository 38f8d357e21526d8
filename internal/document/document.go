// Package document holds the per-session record of an encrypted document.
package document

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Mode is the encryption mode of a document.
type Mode int

const (
	// Plain is an ordinary unencrypted document.
	Plain Mode = iota
	// Transparent keeps ciphertext on disk and plaintext in memory.
	Transparent
)

func (m Mode) String() string {
	switch m {
	case Plain:
		return "plain"
	case Transparent:
		return "transparent"
	default:
		return "unknown"
	}
}

// Handle identifies an installed save interception. The zero Handle means none.
type Handle uuid.UUID

// NewHandle returns a fresh, non-zero Handle.
func NewHandle() Handle {
	return Handle(uuid.New())
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return uuid.UUID(h) == uuid.Nil
}

func (h Handle) String() string {
	return uuid.UUID(h).String()
}

// Saver is a save strategy for a buffer. The host invokes the installed
// Saver instead of its plain save whenever a save is requested.
type Saver interface {
	Save(ctx context.Context) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context) error

func (f SaverFunc) Save(ctx context.Context) error {
	return f(ctx)
}

// Document is owned by one editing session and mutated only by the session
// and the lifecycle controller.
type Document struct {
	// StoragePath is the on-disk identity. Empty when the buffer visits no file.
	StoragePath string

	// LogicalName is StoragePath without its encrypted suffix. Used only for
	// format detection.
	LogicalName string

	// Format is the content type detected from LogicalName, such as "md".
	Format string

	Mode     Mode
	ReadOnly bool
	Dirty    bool

	// ModTime is the on-disk modification time recorded at the last read or
	// write. Zero when the file has not been read or written.
	ModTime time.Time

	// Recipients used for the last decryption, reused on save.
	Recipients []string

	// Handle is the save interception installed for Transparent mode.
	Handle Handle
}

// Flags is a snapshot of the editor-visible flags.
type Flags struct {
	Dirty    bool
	ReadOnly bool
}

// Flags returns the current editor-visible flags.
func (d *Document) Flags() Flags {
	return Flags{Dirty: d.Dirty, ReadOnly: d.ReadOnly}
}

// Restore sets the editor-visible flags back to f.
func (d *Document) Restore(f Flags) {
	d.Dirty = f.Dirty
	d.ReadOnly = f.ReadOnly
}

// Transparent reports whether the document is in Transparent mode.
func (d *Document) Transparent() bool {
	return d.Mode == Transparent
}
