package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRecord_CreatesFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "state", "audit.jsonl")
	log := New(logPath)

	log.Record(Entry{Operation: OpOpen, Path: "notes.gpg", Backend: "openpgp"})

	info, err := os.Stat(logPath)
	if os.IsNotExist(err) {
		t.Fatalf("Audit log file was not created")
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected permissions 0600, got %o", perm)
	}
}

func TestRecord_AppendsEntries(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.jsonl")
	log := New(logPath)

	log.Record(Entry{Operation: OpOpen, Path: "a.gpg"})
	log.Record(Entry{Operation: OpSave, Path: "a.gpg"})
	log.Record(Entry{Operation: OpSaveAs, Path: "b.ordo", From: "a.gpg"})

	entries, err := ReadEntries(logPath)
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[2].Operation != OpSaveAs || entries[2].From != "a.gpg" {
		t.Errorf("Unexpected third entry: %+v", entries[2])
	}
	for _, e := range entries {
		if e.User == "" {
			t.Errorf("Entry %+v has no user", e)
		}
	}
}

func TestRecord_ValidJSON(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.jsonl")
	New(logPath).Record(Entry{Operation: OpCreate, Path: "new.ordo", Backend: "ordo", Recipients: 2})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Errorf("Invalid JSON line %q: %v", line, err)
		}
	}
}

func TestRecord_TimestampFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.jsonl")
	New(logPath).Record(Entry{Operation: OpDisable, Path: "x.gpg"})

	entries, err := ReadEntries(logPath)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ReadEntries = %v, %v", entries, err)
	}
	ts := entries[0].Timestamp
	if !strings.HasSuffix(ts, "Z") || len(ts) != len("2006-01-02T15:04:05.000000Z") {
		t.Errorf("Unexpected timestamp format: %s", ts)
	}
}

func TestRecord_OmitsEmptyFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.jsonl")
	New(logPath).Record(Entry{Operation: OpSave, Path: "x.gpg"})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	for _, field := range []string{"from", "backend", "recipients", "plaintext"} {
		if strings.Contains(string(data), `"`+field+`"`) {
			t.Errorf("Empty field %q should be omitted: %s", field, data)
		}
	}
}

func TestRecord_Disabled(t *testing.T) {
	var nilLog *Log
	nilLog.Record(Entry{Operation: OpSave})
	if nilLog.Path() != "" {
		t.Errorf("Expected empty path for nil log")
	}

	dir := t.TempDir()
	New("").Record(Entry{Operation: OpSave})
	files, _ := os.ReadDir(dir)
	if len(files) != 0 {
		t.Errorf("Disabled log wrote files: %v", files)
	}
}

func TestReadEntries_Missing(t *testing.T) {
	entries, err := ReadEntries(filepath.Join(t.TempDir(), "none.jsonl"))
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if entries != nil {
		t.Errorf("Expected nil entries, got %v", entries)
	}
}

func TestParseEntries_ValidData(t *testing.T) {
	data := []byte(`{"ts":"2024-01-15T10:30:00.123456Z","user":"alice","op":"open","path":"a.gpg"}
{"ts":"2024-01-15T10:35:00.456789Z","user":"bob","op":"save","path":"a.gpg"}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].User != "alice" {
		t.Errorf("Expected first user alice, got %s", entries[0].User)
	}
	if entries[1].Operation != OpSave {
		t.Errorf("Expected second op save, got %s", entries[1].Operation)
	}
}

func TestParseEntries_SkipsMalformedLines(t *testing.T) {
	data := []byte(`{"ts":"2024-01-15T10:30:00.123456Z","user":"alice","op":"open"}
this is not valid json
{"ts":"2024-01-15T10:35:00.456789Z","user":"bob","op":"save"}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if len(entries) != 2 {
		t.Errorf("Expected 2 valid entries (malformed should be skipped), got %d", len(entries))
	}
}

func TestParseEntries_EmptyData(t *testing.T) {
	entries, err := ParseEntries([]byte{})
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if entries != nil {
		t.Errorf("Expected nil entries for empty data, got %v", entries)
	}
}
