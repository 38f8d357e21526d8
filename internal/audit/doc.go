// Package audit records encrypted-document operations in a local audit trail.
//
// Every transition of a document into or out of transparent encryption, and
// every encrypted save, is recorded. Entries name the file and the backend
// but never any document content or passphrase.
//
// # Log Format
//
// The audit log is stored as JSON Lines (one JSON object per line) at the
// path configured by audit_log. Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - User login name
//   - Operation name (open, create, save, save-as, disable)
//   - Storage path and operation-specific details
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// etc.), the operation continues without error.
//
// # Reading Logs
//
// Use ReadEntries() to parse the audit log for display or analysis.
// Malformed entries are silently skipped to handle partial writes.
package audit
