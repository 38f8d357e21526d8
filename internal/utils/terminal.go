package utils

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/term"
)

func ttyPath() string {
	if runtime.GOOS == "windows" {
		return "CON"
	}
	return "/dev/tty"
}

// ReadPassphrase prompts on stderr and reads a passphrase from fd without echoing input.
// Returns an error if fd is not a terminal.
func ReadPassphrase(fd int, prompt string) ([]byte, error) {
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read passphrase: input is not a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	return passphrase, nil
}

// ReadKey reads one keypress from the terminal f in raw mode.
func ReadKey(f *os.File) (byte, error) {
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return 0, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer term.Restore(fd, state)

	buf := make([]byte, 1)
	if _, err := f.Read(buf); err != nil {
		return 0, fmt.Errorf("failed to read key: %w", err)
	}
	return buf[0], nil
}

// OpenTTY opens /dev/tty (or CON on Windows) for reading and writing.
func OpenTTY() (*os.File, error) {
	path := ttyPath()
	tty, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	return tty, nil
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsTTYAvailable returns true if /dev/tty (or CON on Windows) is available for reading.
func IsTTYAvailable() bool {
	tty, err := OpenTTY()
	if err != nil {
		return false
	}
	defer tty.Close()

	return term.IsTerminal(int(tty.Fd()))
}
