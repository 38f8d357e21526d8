package backend

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/ordo/internal/errors"
	logger "github.com/PolarWolf314/ordo/internal/logging"
	"github.com/PolarWolf314/ordo/internal/prompt"
	"github.com/PolarWolf314/ordo/internal/suffix"
)

var fastParams = Argon2Params{Time: 1, MemoryKiB: 64, Threads: 1}

// answers returns a prompter that replays the given lines.
func answers(lines ...string) prompt.Prompter {
	input := ""
	if len(lines) > 0 {
		input = strings.Join(lines, "\n") + "\n"
	}
	return prompt.New(strings.NewReader(input), &bytes.Buffer{})
}

func TestOrdoRoundTrip(t *testing.T) {
	ctx := context.Background()
	plaintext := []byte("line one\nline two\n")

	enc := NewOrdo(answers("hunter2", "hunter2"), fastParams, NewPassphraseCache(false), logger.Logger{})
	ciphertext, err := enc.Encrypt(ctx, plaintext, nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if bytes.Contains(ciphertext, []byte("line one")) {
		t.Fatal("ciphertext contains plaintext")
	}
	if !bytes.HasPrefix(ciphertext, []byte("ORDO")) {
		t.Errorf("ciphertext missing magic: %q", ciphertext[:4])
	}

	dec := NewOrdo(answers("hunter2"), fastParams, NewPassphraseCache(false), logger.Logger{})
	got, recipients, err := dec.Decrypt(ctx, ciphertext)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("Decrypt = %q, want %q", got, plaintext)
	}
	if len(recipients) != 0 {
		t.Errorf("ordo files have no recipients, got %v", recipients)
	}
}

func TestOrdoNondeterministic(t *testing.T) {
	ctx := context.Background()
	b := NewOrdo(answers("pw", "pw", "pw", "pw"), fastParams, NewPassphraseCache(false), logger.Logger{})

	a, err := b.Encrypt(ctx, []byte("same"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	c, err := b.Encrypt(ctx, []byte("same"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if bytes.Equal(a, c) {
		t.Error("two encryptions of the same plaintext should differ")
	}
}

func TestOrdoEmptyPlaintext(t *testing.T) {
	ctx := context.Background()
	b := NewOrdo(answers("pw", "pw", "pw"), fastParams, NewPassphraseCache(false), logger.Logger{})

	ct, err := b.Encrypt(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	got, _, err := b.Decrypt(ctx, ct)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Decrypt = %q, want empty", got)
	}
}

func TestOrdoWrongPassphrase(t *testing.T) {
	ctx := context.Background()
	ct, err := NewOrdo(answers("right", "right"), fastParams, nil, logger.Logger{}).Encrypt(ctx, []byte("secret"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// A second answer is available but must not be used: no retries.
	_, _, err = NewOrdo(answers("wrong", "right"), fastParams, nil, logger.Logger{}).Decrypt(ctx, ct)
	if !errors.Is(err, kerrors.ErrDecryptFailed) || !errors.Is(err, kerrors.ErrWrongPassphrase) {
		t.Errorf("Decrypt error = %v, want ErrDecryptFailed and ErrWrongPassphrase", err)
	}
}

func TestOrdoRejectsCorruptInput(t *testing.T) {
	ctx := context.Background()
	ct, err := NewOrdo(answers("pw", "pw"), fastParams, nil, logger.Logger{}).Encrypt(ctx, []byte("secret"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	tampered := append([]byte(nil), ct...)
	tampered[len(tampered)-1] ^= 0xff

	badVersion := append([]byte(nil), ct...)
	badVersion[4] = 9

	tests := []struct {
		name    string
		data    []byte
		corrupt bool
	}{
		{"empty", nil, true},
		{"truncated", ct[:20], true},
		{"wrong magic", append([]byte("GPG!"), ct[4:]...), true},
		{"unknown version", badVersion, true},
		{"tampered box", tampered, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewOrdo(answers("pw"), fastParams, nil, logger.Logger{}).Decrypt(ctx, tt.data)
			if !errors.Is(err, kerrors.ErrDecryptFailed) {
				t.Fatalf("Decrypt error = %v, want ErrDecryptFailed", err)
			}
			if tt.corrupt && !errors.Is(err, kerrors.ErrCorruptCiphertext) {
				t.Errorf("Decrypt error = %v, want ErrCorruptCiphertext", err)
			}
		})
	}
}

func TestOrdoCancelledPrompt(t *testing.T) {
	_, err := NewOrdo(answers(), fastParams, nil, logger.Logger{}).Encrypt(context.Background(), []byte("x"), nil)
	if !kerrors.IsCancelled(err) {
		t.Errorf("Encrypt error = %v, want ErrCancelled", err)
	}
}

func TestOrdoPassphraseMismatch(t *testing.T) {
	_, err := NewOrdo(answers("one", "two"), fastParams, nil, logger.Logger{}).Encrypt(context.Background(), []byte("x"), nil)
	if !errors.Is(err, kerrors.ErrEncryptFailed) {
		t.Errorf("Encrypt error = %v, want ErrEncryptFailed", err)
	}
}

func TestPassphraseCacheReuseAndEviction(t *testing.T) {
	ctx := context.Background()
	cache := NewPassphraseCache(true)

	// Only two answers: the second encryption and the decryption must use the cache.
	b := NewOrdo(answers("cached", "cached"), fastParams, cache, logger.Logger{})
	ct, err := b.Encrypt(ctx, []byte("one"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := b.Encrypt(ctx, []byte("two"), nil); err != nil {
		t.Fatalf("second Encrypt should use the cache: %v", err)
	}
	if _, _, err := b.Decrypt(ctx, ct); err != nil {
		t.Fatalf("Decrypt should use the cache: %v", err)
	}

	other, err := NewOrdo(answers("other", "other"), fastParams, nil, logger.Logger{}).Encrypt(ctx, []byte("x"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, _, err := b.Decrypt(ctx, other); !errors.Is(err, kerrors.ErrWrongPassphrase) {
		t.Fatalf("Decrypt error = %v, want ErrWrongPassphrase", err)
	}
	if _, ok := cache.Get(); ok {
		t.Error("a failing cached passphrase should be evicted")
	}
}

func TestSetFor(t *testing.T) {
	ordo := NewOrdo(nil, fastParams, nil, logger.Logger{})
	pgp := NewOpenPGP(nil, OpenPGPOptions{}, nil, logger.Logger{})

	set := NewSet(suffix.New([]string{"ordo", "gpg", "age"}), ordo)
	set.Register("gpg", pgp)
	set.Register("ordo", ordo)

	tests := []struct {
		path string
		want string
	}{
		{"notes.gpg", "openpgp"},
		{"notes.ordo", "ordo"},
		{"notes.age", "ordo"},
		{"notes.txt", "ordo"},
	}
	for _, tt := range tests {
		if got := set.For(tt.path).Name(); got != tt.want {
			t.Errorf("For(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}
