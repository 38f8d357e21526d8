package backend

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"

	kerrors "github.com/PolarWolf314/ordo/internal/errors"
	"github.com/PolarWolf314/ordo/internal/prompt"
)

// PassphraseCache keeps one passphrase sealed in memory. The zero value is a
// disabled cache.
type PassphraseCache struct {
	mu      sync.Mutex
	enabled bool
	enclave *memguard.Enclave
}

// NewPassphraseCache returns a cache that stores passphrases when enabled.
func NewPassphraseCache(enabled bool) *PassphraseCache {
	return &PassphraseCache{enabled: enabled}
}

// Put seals a copy of pass. The caller keeps ownership of pass.
func (c *PassphraseCache) Put(pass []byte) {
	if c == nil || !c.enabled || len(pass) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	buf := memguard.NewBufferFromBytes(append([]byte(nil), pass...))
	c.enclave = buf.Seal()
}

// Get opens the cached passphrase. The caller must Destroy the buffer.
func (c *PassphraseCache) Get() (*memguard.LockedBuffer, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.enclave == nil {
		return nil, false
	}
	buf, err := c.enclave.Open()
	if err != nil {
		c.enclave = nil
		return nil, false
	}
	return buf, true
}

// Forget drops the cached passphrase.
func (c *PassphraseCache) Forget() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enclave = nil
}

// acquire returns the cached passphrase or prompts for one. With confirm set
// the user types it twice. cached reports whether it came from the cache.
func (c *PassphraseCache) acquire(p prompt.Prompter, label string, confirm bool) (buf *memguard.LockedBuffer, cached bool, err error) {
	if buf, ok := c.Get(); ok {
		return buf, true, nil
	}
	if p == nil {
		return nil, false, fmt.Errorf("no prompt available for passphrase")
	}

	pass, err := p.Passphrase(label)
	if err != nil {
		return nil, false, err
	}
	if len(pass) == 0 {
		return nil, false, fmt.Errorf("empty passphrase")
	}
	if confirm {
		again, err := p.Passphrase("Repeat passphrase:")
		if err != nil {
			memguard.WipeBytes(pass)
			return nil, false, err
		}
		match := bytes.Equal(pass, again)
		memguard.WipeBytes(again)
		if !match {
			memguard.WipeBytes(pass)
			return nil, false, fmt.Errorf("passphrases do not match")
		}
	}

	return memguard.NewBufferFromBytes(pass), false, nil
}

// wrongPassphrase evicts a cached passphrase that failed and returns the
// error for it.
func (c *PassphraseCache) wrongPassphrase(cached bool) error {
	if cached {
		c.Forget()
	}
	return fmt.Errorf("%w: %w", kerrors.ErrDecryptFailed, kerrors.ErrWrongPassphrase)
}
