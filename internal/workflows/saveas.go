package workflows

import (
	"context"
	"fmt"

	kerrors "github.com/PolarWolf314/ordo/internal/errors"
)

// SaveAsOptions configures the save-as workflow.
type SaveAsOptions struct {
	// Source is the file to read. Encrypted sources are decrypted first.
	Source string

	// Target is the file or directory to write.
	Target string

	// Force overwrites an existing target without asking.
	Force bool
}

// SaveAsResult contains the outcome of a save-as operation.
type SaveAsResult struct {
	// Path is where the file was written.
	Path string

	// Encrypted reports whether ciphertext was written.
	Encrypted bool

	// SourceEncrypted reports whether the source was decrypted.
	SourceEncrypted bool
}

// SaveAs writes the content of Source under Target.
//
// A target with a recognized suffix is written encrypted. An encrypted
// source saved under any other name asks whether to encrypt anyway or write
// plaintext.
//
// Returns ErrFileNotFound if the source does not exist.
// Returns ErrCancelled if the user declines to overwrite or escapes a prompt.
func SaveAs(ctx context.Context, env Env, opts SaveAsOptions) (*SaveAsResult, error) {
	if !env.storage().Exists(opts.Source) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, opts.Source)
	}

	buf, ctl := NewSession(env)
	if err := ctl.Find(ctx, buf, opts.Source); err != nil {
		return nil, err
	}
	sourceEncrypted := buf.Document().Transparent()

	if err := ctl.EncryptedSaveAs(ctx, buf, opts.Target, !opts.Force); err != nil {
		return nil, err
	}

	return &SaveAsResult{
		Path:            buf.Document().StoragePath,
		Encrypted:       buf.Document().Transparent(),
		SourceEncrypted: sourceEncrypted,
	}, nil
}
