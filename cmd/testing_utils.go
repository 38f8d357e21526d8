// Package cmd contains testing utilities shared between command tests.
// This file provides common functions for setting up test environments,
// scripting prompts, and capturing output.
package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/ordo/internal/configs"
	"github.com/PolarWolf314/ordo/internal/prompt"
)

// setupTestEnvironment writes a fast configuration into a temporary
// directory and returns the directory and the configuration file path.
func setupTestEnvironment(t *testing.T) (string, string) {
	t.Helper()
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.toml")

	config := configs.Default()
	config.CachePassphrase = false
	config.AutosaveInterval = 0
	config.AuditLog = filepath.Join(tempDir, "audit.jsonl")
	config.Ordo = configs.OrdoConfig{Argon2Time: 1, Argon2MemoryKiB: 64, Argon2Threads: 1}
	if err := configs.Save(configFile, config); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	ResetGlobalState()
	t.Cleanup(ResetGlobalState)

	return tempDir, configFile
}

// scriptPrompts makes every command answer its prompts from script and
// returns the buffer prompts are written to.
func scriptPrompts(script string) *bytes.Buffer {
	out := &bytes.Buffer{}
	openPrompter = func() (*prompt.Lines, func() error, error) {
		return prompt.New(strings.NewReader(script), out), nil, nil
	}
	return out
}

// withStdin replaces os.Stdin with a file holding data for the rest of the test.
func withStdin(t *testing.T, data string) {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "stdin-*")
	if err != nil {
		t.Fatalf("Failed to create stdin file: %v", err)
	}
	if _, err := f.WriteString(data); err != nil {
		t.Fatalf("Failed to write stdin file: %v", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Failed to rewind stdin file: %v", err)
	}

	original := os.Stdin
	os.Stdin = f
	t.Cleanup(func() {
		os.Stdin = original
		f.Close()
	})
}

// runCLI executes the root command with args.
func runCLI(args ...string) error {
	RootCmd.SetArgs(args)
	return RootCmd.Execute()
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	// Save original stdout and stderr
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	// Create pipes to capture output
	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	// Replace stdout and stderr
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	// Channel to collect output
	outputChan := make(chan string, 2)

	// Start goroutines to read from pipes
	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stdoutReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stderrReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	// Execute the function
	err := fn()

	// Close writers to signal EOF
	stdoutWriter.Close()
	stderrWriter.Close()

	// Restore original stdout and stderr
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	// Collect output
	stdout := <-outputChan
	stderr := <-outputChan

	return stdout + stderr, err
}
