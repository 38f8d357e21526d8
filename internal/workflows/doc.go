// Package workflows provides high-level orchestration for ordo commands.
//
// Workflows coordinate configuration, backends, the editor buffer and the
// lifecycle controller to implement complete user-facing features. Each
// workflow handles a single command's business logic, independent of CLI
// concerns like flag parsing, spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Building the backend set from the configuration
//   - Opening the document and switching it into transparent mode
//   - Performing the save
//
// # Available Workflows
//
//   - NewSession: Builds a buffer and controller for interactive editing
//   - Open: Decrypts an encrypted file for display
//   - Create: Encrypts new plaintext into a file
//   - SaveAs: Re-saves a file under a new name, encrypted or not
//   - List: Finds encrypted files by path, directory or glob
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Use errors.Is() to check for specific error conditions:
//
//	result, err := workflows.Open(ctx, env, opts)
//	if errors.Is(err, kerrors.ErrWrongPassphrase) {
//	    // Show user-friendly message
//	}
//
// # Context Usage
//
// Workflows that may prompt or run a backend accept a context.Context as
// their first parameter. List only reads directory entries and takes none.
package workflows
