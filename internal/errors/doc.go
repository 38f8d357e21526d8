// Package errors provides typed error values for ordo.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Crypto errors: backend failures (ErrDecryptFailed, ErrEncryptFailed,
//     ErrWrongPassphrase, ErrNoRecipient)
//   - Precondition errors: a transition called in the wrong state
//     (ErrAlreadyTransparent, ErrNotTransparent, ErrNoTargetIdentity)
//   - Interaction errors: prompt escapes and buffer access (ErrCancelled,
//     ErrReadOnly)
//   - File and config errors (ErrFileNotFound, ErrInvalidConfig)
//
// # Usage
//
// Backends wrap the category error with the cause:
//
//	return nil, fmt.Errorf("%w: %v", errors.ErrDecryptFailed, err)
//
// The CLI layer checks for cancellation and stays quiet:
//
//	if kerrors.IsCancelled(err) {
//	    return nil
//	}
package errors
