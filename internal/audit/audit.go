package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/PolarWolf314/ordo/internal/utils"
)

// Operation names recorded in the log.
const (
	OpOpen    = "open"
	OpCreate  = "create"
	OpSave    = "save"
	OpSaveAs  = "save-as"
	OpDisable = "disable"
)

// Entry represents a single audit log entry. It never carries document content.
type Entry struct {
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	User      string `json:"user"` // Login name of the user performing the action.
	Operation string `json:"op"`   // Operation name.
	Path      string `json:"path"` // Storage path the operation acted on.

	// Optional fields depending on operation.
	From       string `json:"from,omitempty"`       // For save-as, the previous path.
	Backend    string `json:"backend,omitempty"`    // Crypto backend used.
	Recipients int    `json:"recipients,omitempty"` // Number of recipients encrypted to.
	Plaintext  bool   `json:"plaintext,omitempty"`  // For save-as, true when the user chose to leave encryption.
}

// Log appends entries to a JSON Lines file. A nil or zero-path Log discards
// entries.
type Log struct {
	path string
	mu   sync.Mutex
	user string
}

// New returns a Log writing to path. An empty path disables logging.
func New(path string) *Log {
	user, err := utils.GetUsername()
	if err != nil {
		user = "unknown"
	}
	return &Log{path: path, user: user}
}

// Path returns the path to the audit log file, or "" when logging is off.
func (l *Log) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Record appends entry to the log.
// If logging fails, it is silently dropped.
// Operations should not fail just because audit logging failed.
func (l *Log) Record(entry Entry) {
	if l == nil || l.path == "" {
		return
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}
	if entry.User == "" {
		entry.User = l.user
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the audit log at path.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(path string) ([]Entry, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				// Skip malformed entries.
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
