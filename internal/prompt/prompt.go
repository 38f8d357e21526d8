// Package prompt implements the blocking interactive prompts of an editing
// session: lines, single-key choices, yes/no confirmations and hidden
// passphrases. Escaping any prompt yields errors.ErrCancelled.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	kerrors "github.com/PolarWolf314/ordo/internal/errors"
	"github.com/PolarWolf314/ordo/internal/ui"
	"github.com/PolarWolf314/ordo/internal/utils"
)

// Prompter asks the user for input. Every method blocks until the user
// answers or escapes.
type Prompter interface {
	// Line reads one line. An empty answer returns def.
	Line(prompt, def string) (string, error)
	// Char reads a single-character answer. It returns 0 for an empty answer
	// or one longer than a single character.
	Char(prompt string) (rune, error)
	// Confirm asks a yes/no question until it gets a valid answer.
	Confirm(prompt string) (bool, error)
	// Passphrase reads a secret without echo where the input allows it.
	Passphrase(prompt string) ([]byte, error)
	// Printf shows a message to the user.
	Printf(format string, args ...any)
}

// Keys that escape a single-key prompt in raw mode: Ctrl-C, Ctrl-G, Escape.
const (
	keyInterrupt = 0x03
	keyQuit      = 0x07
	keyEscape    = 0x1b
)

// Lines prompts over a line-oriented stream. When attached to a terminal,
// passphrases are read without echo and choices take a single keypress.
type Lines struct {
	in  *bufio.Reader
	out io.Writer
	tty *os.File
}

// New returns a Prompter reading answers from in and writing prompts to out.
func New(in io.Reader, out io.Writer) *Lines {
	return &Lines{in: bufio.NewReader(in), out: out}
}

// NewTerminal returns a Prompter bound to the controlling terminal. When stdin
// is not a terminal (for instance when plaintext is piped in), /dev/tty is
// used instead. The returned function releases the terminal.
func NewTerminal() (*Lines, func() error, error) {
	if utils.IsTerminal() {
		return &Lines{in: bufio.NewReader(os.Stdin), out: os.Stderr, tty: os.Stdin}, func() error { return nil }, nil
	}
	if !utils.IsTTYAvailable() {
		return nil, nil, errors.New("no terminal available for prompts")
	}
	tty, err := utils.OpenTTY()
	if err != nil {
		return nil, nil, fmt.Errorf("no terminal available for prompts: %w", err)
	}
	return &Lines{in: bufio.NewReader(tty), out: tty, tty: tty}, tty.Close, nil
}

// Reader exposes the buffered input so a caller reading commands shares it
// with the prompts.
func (l *Lines) Reader() *bufio.Reader {
	return l.in
}

// Writer returns the prompt output.
func (l *Lines) Writer() io.Writer {
	return l.out
}

func (l *Lines) readLine() (string, error) {
	line, err := l.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line == "" {
			return "", kerrors.ErrCancelled
		}
		if !errors.Is(err, io.EOF) {
			return "", err
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (l *Lines) Line(prompt, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(l.out, "%s %s ", prompt, ui.Muted.Sprint(def))
	} else {
		fmt.Fprintf(l.out, "%s ", prompt)
	}
	line, err := l.readLine()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) == "" {
		return def, nil
	}
	return line, nil
}

func (l *Lines) Char(prompt string) (rune, error) {
	fmt.Fprintf(l.out, "%s ", prompt)

	if l.tty != nil && l.in.Buffered() == 0 {
		key, err := utils.ReadKey(l.tty)
		if err != nil {
			return 0, err
		}
		switch key {
		case keyInterrupt, keyQuit, keyEscape:
			fmt.Fprintln(l.out)
			return 0, kerrors.ErrCancelled
		case '\r', '\n':
			fmt.Fprintln(l.out)
			return 0, nil
		}
		fmt.Fprintf(l.out, "%c\n", key)
		return rune(key), nil
	}

	line, err := l.readLine()
	if err != nil {
		return 0, err
	}
	runes := []rune(strings.TrimSpace(line))
	if len(runes) != 1 {
		return 0, nil
	}
	return runes[0], nil
}

func (l *Lines) Confirm(prompt string) (bool, error) {
	for {
		answer, err := l.Line(prompt+" (yes or no)", "")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(l.out, "Please answer yes or no.")
	}
}

func (l *Lines) Passphrase(prompt string) ([]byte, error) {
	if l.tty != nil {
		pass, err := utils.ReadPassphrase(int(l.tty.Fd()), prompt+" ")
		if errors.Is(err, io.EOF) {
			return nil, kerrors.ErrCancelled
		}
		return pass, err
	}

	fmt.Fprintf(l.out, "%s ", prompt)
	line, err := l.readLine()
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

func (l *Lines) Printf(format string, args ...any) {
	fmt.Fprint(l.out, ui.EnsureNewline(fmt.Sprintf(format, args...)))
}
