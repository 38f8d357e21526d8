package backend

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	kerrors "github.com/PolarWolf314/ordo/internal/errors"
	logger "github.com/PolarWolf314/ordo/internal/logging"
	"github.com/PolarWolf314/ordo/internal/prompt"
)

// .ordo wire format:
//
//	magic "ORDO" | version u8 | argon2 time u32 | memory KiB u32 | threads u8 |
//	salt [16] | nonce [24] | secretbox(plaintext)
const (
	ordoMagic     = "ORDO"
	ordoVersion   = 1
	ordoSaltSize  = 16
	ordoNonceSize = 24
	ordoKeySize   = 32
	ordoHeaderLen = len(ordoMagic) + 1 + 4 + 4 + 1 + ordoSaltSize + ordoNonceSize

	// Upper bound accepted from a file header, to refuse absurd allocations.
	ordoMaxMemoryKiB = 4 * 1024 * 1024
	ordoMaxTime      = 64
)

// Argon2Params are the key derivation parameters written into new files.
type Argon2Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// Ordo is the native passphrase backend.
type Ordo struct {
	prompt prompt.Prompter
	params Argon2Params
	cache  *PassphraseCache
	log    logger.Logger
	rand   io.Reader
}

// NewOrdo returns an Ordo backend reading passphrases from p.
func NewOrdo(p prompt.Prompter, params Argon2Params, cache *PassphraseCache, log logger.Logger) *Ordo {
	return &Ordo{
		prompt: p,
		params: params,
		cache:  cache,
		log:    log,
		rand:   rand.Reader,
	}
}

func (o *Ordo) Name() string {
	return "ordo"
}

func (o *Ordo) deriveKey(pass []byte, salt []byte, p Argon2Params) *memguard.LockedBuffer {
	key := argon2.IDKey(pass, salt, p.Time, p.MemoryKiB, p.Threads, ordoKeySize)
	return memguard.NewBufferFromBytes(key)
}

// Encrypt seals plaintext under a passphrase. Recipients are ignored.
func (o *Ordo) Encrypt(ctx context.Context, plaintext []byte, recipients []string) ([]byte, error) {
	if len(recipients) > 0 {
		o.log.Debugf("ordo backend ignores %d recipient(s)", len(recipients))
	}

	pass, _, err := o.cache.acquire(o.prompt, "Passphrase for encryption:", true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrEncryptFailed, err)
	}
	defer pass.Destroy()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var salt [ordoSaltSize]byte
	var nonce [ordoNonceSize]byte
	if _, err := io.ReadFull(o.rand, salt[:]); err != nil {
		return nil, fmt.Errorf("%w: generating salt: %v", kerrors.ErrEncryptFailed, err)
	}
	if _, err := io.ReadFull(o.rand, nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: generating nonce: %v", kerrors.ErrEncryptFailed, err)
	}

	o.log.Debugf("Deriving key with argon2id t=%d m=%dKiB p=%d", o.params.Time, o.params.MemoryKiB, o.params.Threads)
	key := o.deriveKey(pass.Bytes(), salt[:], o.params)
	defer key.Destroy()

	out := make([]byte, 0, ordoHeaderLen+len(plaintext)+secretbox.Overhead)
	out = append(out, ordoMagic...)
	out = append(out, ordoVersion)
	out = binary.BigEndian.AppendUint32(out, o.params.Time)
	out = binary.BigEndian.AppendUint32(out, o.params.MemoryKiB)
	out = append(out, o.params.Threads)
	out = append(out, salt[:]...)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, plaintext, &nonce, key.ByteArray32())

	o.cache.Put(pass.Bytes())
	return out, nil
}

// Decrypt opens a .ordo file.
func (o *Ordo) Decrypt(ctx context.Context, data []byte) ([]byte, []string, error) {
	params, salt, nonce, box, err := parseOrdo(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", kerrors.ErrDecryptFailed, err)
	}

	pass, cached, err := o.cache.acquire(o.prompt, "Passphrase:", false)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", kerrors.ErrDecryptFailed, err)
	}
	defer pass.Destroy()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	key := o.deriveKey(pass.Bytes(), salt, params)
	defer key.Destroy()

	plaintext, ok := secretbox.Open(nil, box, nonce, key.ByteArray32())
	if !ok {
		return nil, nil, o.cache.wrongPassphrase(cached)
	}

	o.cache.Put(pass.Bytes())
	return plaintext, nil, nil
}

func parseOrdo(data []byte) (Argon2Params, []byte, *[ordoNonceSize]byte, []byte, error) {
	var p Argon2Params
	if len(data) < ordoHeaderLen+secretbox.Overhead {
		return p, nil, nil, nil, fmt.Errorf("%w: file too short", kerrors.ErrCorruptCiphertext)
	}
	if !bytes.Equal(data[:len(ordoMagic)], []byte(ordoMagic)) {
		return p, nil, nil, nil, fmt.Errorf("%w: not an ordo file", kerrors.ErrCorruptCiphertext)
	}
	off := len(ordoMagic)
	if v := data[off]; v != ordoVersion {
		return p, nil, nil, nil, fmt.Errorf("%w: unsupported version %d", kerrors.ErrCorruptCiphertext, v)
	}
	off++

	p.Time = binary.BigEndian.Uint32(data[off:])
	off += 4
	p.MemoryKiB = binary.BigEndian.Uint32(data[off:])
	off += 4
	p.Threads = data[off]
	off++
	if p.Time == 0 || p.Time > ordoMaxTime || p.Threads == 0 || p.MemoryKiB == 0 || p.MemoryKiB > ordoMaxMemoryKiB {
		return p, nil, nil, nil, fmt.Errorf("%w: bad key derivation parameters", kerrors.ErrCorruptCiphertext)
	}

	salt := data[off : off+ordoSaltSize]
	off += ordoSaltSize
	var nonce [ordoNonceSize]byte
	copy(nonce[:], data[off:off+ordoNonceSize])
	off += ordoNonceSize

	return p, salt, &nonce, data[off:], nil
}
