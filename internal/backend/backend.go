package backend

import (
	"context"

	"github.com/PolarWolf314/ordo/internal/suffix"
)

// Backend is the crypto engine behind a document. Both calls are single-shot:
// a failure is returned to the caller and never retried.
type Backend interface {
	// Name identifies the backend in logs and status output.
	Name() string

	// Decrypt returns the plaintext of ciphertext and the recipients it was
	// encrypted to. Recipients is empty for passphrase-only messages.
	// Failures wrap errors.ErrDecryptFailed.
	Decrypt(ctx context.Context, ciphertext []byte) (plaintext []byte, recipients []string, err error)

	// Encrypt returns the ciphertext of plaintext for recipients. With no
	// recipients the backend prompts or falls back to a passphrase.
	// Failures wrap errors.ErrEncryptFailed.
	Encrypt(ctx context.Context, plaintext []byte, recipients []string) ([]byte, error)
}

// Set selects a backend by the suffix of a document's storage path.
type Set struct {
	policy   suffix.Policy
	bySuffix map[string]Backend
	fallback Backend
}

// NewSet returns a Set over policy. fallback serves names with no recognized
// suffix and recognized suffixes without a registered backend.
func NewSet(policy suffix.Policy, fallback Backend) *Set {
	return &Set{
		policy:   policy,
		bySuffix: make(map[string]Backend),
		fallback: fallback,
	}
}

// Register serves documents ending in "."+sfx with b.
func (s *Set) Register(sfx string, b Backend) {
	s.bySuffix[sfx] = b
}

// For returns the backend for path.
func (s *Set) For(path string) Backend {
	if sfx, ok := s.policy.Match(path); ok {
		if b, ok := s.bySuffix[sfx]; ok {
			return b
		}
	}
	return s.fallback
}
