package workflows

import (
	"context"
	"fmt"

	kerrors "github.com/PolarWolf314/ordo/internal/errors"
)

// OpenOptions configures the open workflow.
type OpenOptions struct {
	// Path is the encrypted file to open.
	Path string
}

// OpenResult contains the outcome of an open operation.
type OpenResult struct {
	// Plaintext is the decrypted content. The caller should wipe it when done.
	Plaintext []byte

	// LogicalName is Path without its encrypted suffix.
	LogicalName string

	// Format is the content format detected from LogicalName.
	Format string

	// Recipients the file was encrypted to. Empty for passphrase encryption.
	Recipients []string
}

// Open decrypts an existing file.
//
// The file is decrypted with the backend its suffix selects, or the fallback
// backend when the suffix is not recognized.
//
// Returns ErrFileNotFound if the file does not exist.
// Returns ErrDecryptFailed (wrapping the cause) if decryption fails.
func Open(ctx context.Context, env Env, opts OpenOptions) (*OpenResult, error) {
	if !env.storage().Exists(opts.Path) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, opts.Path)
	}

	buf, ctl := NewSession(env)
	if err := buf.Visit(opts.Path); err != nil {
		return nil, err
	}
	if err := ctl.OpenEncrypted(ctx, buf); err != nil {
		return nil, err
	}

	doc := buf.Document()
	return &OpenResult{
		Plaintext:   buf.Content(),
		LogicalName: doc.LogicalName,
		Format:      doc.Format,
		Recipients:  doc.Recipients,
	}, nil
}
