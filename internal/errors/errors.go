package errors

import "errors"

// Cryptographic errors indicate failures inside a crypto backend.
var (
	// ErrDecryptFailed indicates the ciphertext could not be decrypted.
	ErrDecryptFailed = errors.New("failed to decrypt file")

	// ErrEncryptFailed indicates the buffer could not be encrypted.
	ErrEncryptFailed = errors.New("failed to encrypt buffer")

	// ErrWrongPassphrase indicates the passphrase did not open the ciphertext.
	ErrWrongPassphrase = errors.New("wrong passphrase")

	// ErrCorruptCiphertext indicates the ciphertext is truncated, tampered with or not in a known format.
	ErrCorruptCiphertext = errors.New("ciphertext is corrupt or in an unknown format")

	// ErrNoRecipient indicates no usable encryption recipient could be resolved.
	ErrNoRecipient = errors.New("no usable recipient")

	// ErrKeyNotFound indicates a key needed for decryption is not in the keyring.
	ErrKeyNotFound = errors.New("key not found in keyring")
)

// Precondition errors indicate a transition was requested in the wrong state.
// They abort the current command without touching document state.
var (
	// ErrAlreadyTransparent indicates the document is already in transparent mode.
	ErrAlreadyTransparent = errors.New("document is already in transparent encryption mode")

	// ErrNotTransparent indicates the document is not in transparent mode.
	ErrNotTransparent = errors.New("document is not in transparent encryption mode")

	// ErrNoTargetIdentity indicates the document has no storage path to save to.
	ErrNoTargetIdentity = errors.New("document has no target identity")
)

// Interaction errors come from prompts and buffer access.
var (
	// ErrCancelled indicates the user escaped a prompt. It is never reported as a failure.
	ErrCancelled = errors.New("cancelled")

	// ErrReadOnly indicates an edit was attempted on a read-only buffer.
	ErrReadOnly = errors.New("buffer is read-only")

	// ErrInvalidLine indicates a line number outside the buffer.
	ErrInvalidLine = errors.New("invalid line number")

	// ErrUnknownHandle indicates a save handle that is not installed on the buffer.
	ErrUnknownHandle = errors.New("unknown save handle")
)

// File and configuration errors.
var (
	// ErrFileNotFound indicates a specific file could not be located.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidConfig indicates the configuration file is malformed or has invalid values.
	ErrInvalidConfig = errors.New("configuration is invalid")
)

// IsPrecondition reports whether err is a precondition violation.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrAlreadyTransparent) ||
		errors.Is(err, ErrNotTransparent) ||
		errors.Is(err, ErrNoTargetIdentity)
}

// IsCancelled reports whether err came from the user escaping a prompt.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
