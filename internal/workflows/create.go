package workflows

import (
	"context"

	kerrors "github.com/PolarWolf314/ordo/internal/errors"
)

// CreateOptions configures the create workflow.
type CreateOptions struct {
	// Path is the file to create. The default suffix is appended when it has
	// no recognized one.
	Path string

	// Plaintext is the content to encrypt.
	Plaintext []byte

	// Force overwrites an existing file without asking.
	Force bool
}

// CreateResult contains the outcome of a create operation.
type CreateResult struct {
	// Path is where the ciphertext was written.
	Path string

	// Backend is the name of the backend that encrypted the file.
	Backend string
}

// Create encrypts plaintext into a new file. The buffer is switched to
// transparent mode under the new name and saved through its installed saver.
//
// Returns ErrNoTargetIdentity if no path is given.
// Returns ErrCancelled if the file exists and the user declines to overwrite it.
// Returns ErrEncryptFailed (wrapping the cause) if encryption fails.
func Create(ctx context.Context, env Env, opts CreateOptions) (*CreateResult, error) {
	if opts.Path == "" {
		return nil, kerrors.ErrNoTargetIdentity
	}

	buf, ctl := NewSession(env)
	buf.ReplaceContent(opts.Plaintext)
	if err := ctl.OrdoifyAs(ctx, buf, opts.Path, !opts.Force); err != nil {
		return nil, err
	}
	target := buf.Document().StoragePath
	if !ctl.Policy().HasSuffix(opts.Path) {
		env.Log.Infof("Appending default suffix: %s", target)
	}

	if err := buf.Save(ctx); err != nil {
		return nil, err
	}

	return &CreateResult{
		Path:    target,
		Backend: ctl.BackendFor(target).Name(),
	}, nil
}
