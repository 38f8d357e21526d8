// Package backend provides the crypto engines behind transparent encryption.
//
// The lifecycle controller never looks at key material; it calls a Backend
// with whole byte buffers:
//
//	plaintext, recipients, err := b.Decrypt(ctx, ciphertext)
//	ciphertext, err := b.Encrypt(ctx, plaintext, recipients)
//
// # Backends
//
//   - Ordo: the native .ordo format. A passphrase is stretched with Argon2id
//     and the content sealed with NaCl secretbox behind a small header.
//   - OpenPGP: .gpg and .pgp files, public-key or symmetric, via
//     github.com/ProtonMail/go-crypto.
//
// A Set maps configured suffixes to backends, with a fallback for names
// that carry no recognized suffix.
//
// # Passphrases
//
// Passphrases are read through a prompt.Prompter and, when caching is on,
// sealed in a memguard Enclave for the rest of the process. A passphrase that
// fails to decrypt is evicted. A wrong passphrase is reported once; the
// backend does not ask again within the same call.
package backend
