package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/awnumar/memguard"

	kerrors "github.com/PolarWolf314/ordo/internal/errors"
	logger "github.com/PolarWolf314/ordo/internal/logging"
	"github.com/PolarWolf314/ordo/internal/prompt"
)

const armorHeader = "-----BEGIN PGP MESSAGE-----"

// OpenPGPOptions configures an OpenPGP backend.
type OpenPGPOptions struct {
	// PublicKeyring and SecretKeyring are keyring files, armored or binary.
	// Missing files are treated as empty keyrings.
	PublicKeyring string
	SecretKeyring string

	// Keys, when set, is used instead of reading the keyring files.
	Keys openpgp.EntityList

	// Armor writes ASCII-armored output.
	Armor bool
}

// OpenPGP handles .gpg and .pgp files.
type OpenPGP struct {
	prompt prompt.Prompter
	opts   OpenPGPOptions
	cache  *PassphraseCache
	log    logger.Logger
	config *packet.Config

	loadOnce sync.Once
	keys     openpgp.EntityList
	loadErr  error
}

// NewOpenPGP returns an OpenPGP backend.
func NewOpenPGP(p prompt.Prompter, opts OpenPGPOptions, cache *PassphraseCache, log logger.Logger) *OpenPGP {
	return &OpenPGP{
		prompt: p,
		opts:   opts,
		cache:  cache,
		log:    log,
		config: &packet.Config{DefaultCipher: packet.CipherAES256},
	}
}

func (o *OpenPGP) Name() string {
	return "openpgp"
}

func (o *OpenPGP) keyring() (openpgp.EntityList, error) {
	o.loadOnce.Do(func() {
		if o.opts.Keys != nil {
			o.keys = o.opts.Keys
			return
		}
		for _, path := range []string{o.opts.PublicKeyring, o.opts.SecretKeyring} {
			if path == "" {
				continue
			}
			list, err := readKeyring(path)
			if err != nil {
				o.loadErr = err
				return
			}
			o.log.Debugf("Loaded %d key(s) from %s", len(list), path)
			o.keys = append(o.keys, list...)
		}
	})
	return o.keys, o.loadErr
}

func readKeyring(path string) (openpgp.EntityList, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading keyring %s: %w", path, err)
	}
	if list, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data)); err == nil {
		return list, nil
	}
	list, err := openpgp.ReadKeyRing(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing keyring %s: %w", path, err)
	}
	return list, nil
}

// Decrypt opens a public-key or symmetric OpenPGP message.
func (o *OpenPGP) Decrypt(ctx context.Context, data []byte) ([]byte, []string, error) {
	keys, err := o.keyring()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", kerrors.ErrDecryptFailed, err)
	}

	var r io.Reader = bytes.NewReader(data)
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(armorHeader)) {
		block, err := armor.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w: %v", kerrors.ErrDecryptFailed, kerrors.ErrCorruptCiphertext, err)
		}
		r = block.Body
	}

	var (
		asked      bool
		symmetric  []byte
		fromCache  bool
		promptFail error
	)
	defer func() {
		if symmetric != nil {
			clear(symmetric)
		}
	}()

	promptFn := func(candidates []openpgp.Key, isSymmetric bool) ([]byte, error) {
		if asked {
			// The previous answer did not open the message.
			promptFail = kerrors.ErrWrongPassphrase
			return nil, promptFail
		}
		asked = true

		for _, k := range candidates {
			if k.PrivateKey == nil || !k.PrivateKey.Encrypted {
				continue
			}
			pass, err := o.prompt.Passphrase(fmt.Sprintf("Passphrase for key %s:", describeKey(k)))
			if err != nil {
				return nil, err
			}
			err = k.PrivateKey.Decrypt(pass)
			clear(pass)
			if err == nil {
				return nil, nil
			}
		}
		if !isSymmetric {
			promptFail = kerrors.ErrWrongPassphrase
			return nil, promptFail
		}

		buf, cached, err := o.cache.acquire(o.prompt, "Passphrase:", false)
		if err != nil {
			return nil, err
		}
		symmetric = append([]byte(nil), buf.Bytes()...)
		fromCache = cached
		buf.Destroy()
		return symmetric, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	md, err := openpgp.ReadMessage(r, keys, promptFn, o.config)
	if err != nil {
		if errors.Is(promptFail, kerrors.ErrWrongPassphrase) && symmetric != nil {
			return nil, nil, o.cache.wrongPassphrase(fromCache)
		}
		return nil, nil, fmt.Errorf("%w: %w", kerrors.ErrDecryptFailed, err)
	}

	plaintext, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w: %v", kerrors.ErrDecryptFailed, kerrors.ErrCorruptCiphertext, err)
	}
	if md.IsSigned && md.SignatureError != nil {
		o.log.WarnfAlways("Signature check failed: %v", md.SignatureError)
	}
	if md.IsSymmetricallyEncrypted {
		o.cache.Put(symmetric)
		return plaintext, nil, nil
	}

	return plaintext, o.recipientsFor(md.EncryptedToKeyIds, keys), nil
}

func (o *OpenPGP) recipientsFor(ids []uint64, keys openpgp.EntityList) []string {
	var out []string
	seen := make(map[string]bool)
	for _, id := range ids {
		// Messages are usually encrypted to a subkey; name the entity by its
		// email or primary key id so the answer resolves again on save.
		name := fmt.Sprintf("%016X", id)
		if found := keys.KeysById(id); len(found) > 0 && found[0].Entity != nil {
			e := found[0].Entity
			if email := primaryEmail(e); email != "" {
				name = email
			} else if e.PrimaryKey != nil {
				name = fmt.Sprintf("%016X", e.PrimaryKey.KeyId)
			}
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// Encrypt encrypts to recipients from the public keyring. With no recipients
// the user is asked for some; an empty answer selects symmetric encryption.
func (o *OpenPGP) Encrypt(ctx context.Context, plaintext []byte, recipients []string) ([]byte, error) {
	if len(recipients) == 0 {
		answer, err := o.prompt.Line("Recipients (comma separated, empty for symmetric encryption):", "")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", kerrors.ErrEncryptFailed, err)
		}
		recipients = splitRecipients(answer)
	}

	var out bytes.Buffer
	var sink io.Writer = &out
	var armorW io.WriteCloser
	if o.opts.Armor {
		w, err := armor.Encode(&out, "PGP MESSAGE", nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
		}
		armorW = w
		sink = w
	}

	hints := &openpgp.FileHints{IsBinary: true}
	var w io.WriteCloser
	var pass *memguard.LockedBuffer

	if len(recipients) == 0 {
		var err error
		pass, _, err = o.cache.acquire(o.prompt, "Passphrase for symmetric encryption:", true)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", kerrors.ErrEncryptFailed, err)
		}
		defer pass.Destroy()
		if w, err = openpgp.SymmetricallyEncrypt(sink, pass.Bytes(), hints, o.config); err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
		}
	} else {
		to, err := o.resolve(recipients)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", kerrors.ErrEncryptFailed, err)
		}
		if w, err = openpgp.Encrypt(sink, to, nil, hints, o.config); err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}
	if armorW != nil {
		if err := armorW.Close(); err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
		}
	}

	if pass != nil {
		o.cache.Put(pass.Bytes())
	}
	return out.Bytes(), nil
}

func (o *OpenPGP) resolve(recipients []string) ([]*openpgp.Entity, error) {
	keys, err := o.keyring()
	if err != nil {
		return nil, err
	}

	var to []*openpgp.Entity
	for _, r := range recipients {
		var match *openpgp.Entity
		for _, e := range keys {
			if matchEntity(e, r) {
				match = e
				break
			}
		}
		if match == nil {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrNoRecipient, r)
		}
		to = append(to, match)
	}
	return to, nil
}

// matchEntity matches query against an email, a user id, or the hex id or
// fingerprint of the primary key or any subkey.
func matchEntity(e *openpgp.Entity, query string) bool {
	q := strings.TrimSpace(query)
	if q == "" || e.PrimaryKey == nil {
		return false
	}
	for id, ident := range e.Identities {
		if ident.UserId != nil && strings.EqualFold(ident.UserId.Email, q) {
			return true
		}
		if strings.EqualFold(id, q) {
			return true
		}
	}
	hex := strings.ToUpper(strings.TrimPrefix(strings.TrimPrefix(q, "0x"), "0X"))
	if len(hex) >= 8 {
		if strings.HasSuffix(fmt.Sprintf("%016X", e.PrimaryKey.KeyId), hex) {
			return true
		}
		if strings.HasSuffix(fmt.Sprintf("%X", e.PrimaryKey.Fingerprint), hex) {
			return true
		}
		for _, sub := range e.Subkeys {
			if sub.PublicKey == nil {
				continue
			}
			if strings.HasSuffix(fmt.Sprintf("%016X", sub.PublicKey.KeyId), hex) ||
				strings.HasSuffix(fmt.Sprintf("%X", sub.PublicKey.Fingerprint), hex) {
				return true
			}
		}
	}
	return false
}

func primaryEmail(e *openpgp.Entity) string {
	names := make([]string, 0, len(e.Identities))
	for name := range e.Identities {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ident := e.Identities[name]; ident.UserId != nil && ident.UserId.Email != "" {
			return ident.UserId.Email
		}
	}
	return ""
}

func describeKey(k openpgp.Key) string {
	if k.Entity != nil {
		if email := primaryEmail(k.Entity); email != "" {
			return email
		}
	}
	if k.PublicKey != nil {
		return fmt.Sprintf("%016X", k.PublicKey.KeyId)
	}
	return "(unknown)"
}

func splitRecipients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
