// Package lifecycle switches a document between plain editing and
// transparent encryption.
//
// A document starts Plain. OpenEncrypted decrypts the visited file and
// Ordoify adopts an encrypted identity for content that is not on disk yet;
// both move the document to Transparent and install exactly one save
// handle on the session. While Transparent, every save the host performs
// is routed to EncryptedSave, which encrypts a scratch copy of the buffer
// and writes only ciphertext. Disable leaves Transparent after the user
// confirms.
//
// # Prompts and Cancellation
//
// Every transition asks all of its questions before it changes anything.
// A cancelled prompt returns errors.ErrCancelled and leaves the document as
// it was before the command.
//
// # Invariant
//
// A document is Transparent exactly when one save handle is installed for
// it. CheckInvariant verifies this and is run after every transition in the
// tests.
package lifecycle
