// Package shell is a line-oriented editor over one buffer, in the spirit of
// ed. It is the interactive front end for transparent encryption: every
// save it issues goes through the buffer, so an encrypted document is only
// ever written as ciphertext.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/common-nighthawk/go-figure"

	"github.com/PolarWolf314/ordo/internal/editor"
	kerrors "github.com/PolarWolf314/ordo/internal/errors"
	"github.com/PolarWolf314/ordo/internal/lifecycle"
	logger "github.com/PolarWolf314/ordo/internal/logging"
	"github.com/PolarWolf314/ordo/internal/ui"
)

const commandPrompt = "ordo> "

// Shell reads commands from in and applies them to a buffer.
type Shell struct {
	buf *editor.Buffer
	ctl *lifecycle.Controller
	in  *bufio.Reader
	out io.Writer
	log logger.Logger
}

// New returns a shell editing buf. in should be the reader the buffer's
// prompter reads from so prompts and commands share one input stream.
func New(buf *editor.Buffer, ctl *lifecycle.Controller, in *bufio.Reader, out io.Writer, log logger.Logger) *Shell {
	return &Shell{buf: buf, ctl: ctl, in: in, out: out, log: log}
}

// Banner prints the ordo banner and a one-line summary of the buffer.
func (s *Shell) Banner() {
	fmt.Fprintln(s.out)
	figure.Write(s.out, figure.NewFigure("ordo", "alligator2", true))
	fmt.Fprintln(s.out)
	s.status()
	fmt.Fprintf(s.out, "%s Type %s for help\n\n", ui.Info.Sprint("→"), ui.Code.Sprint("h"))
}

// Run executes commands until quit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, commandPrompt)
		line, err := s.readLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			if s.buf.Document().Dirty {
				fmt.Fprintln(s.out, ui.Warning.Sprint("Warning:"), "buffer modified and not saved")
			}
			return nil
		}
		if err != nil {
			return err
		}

		quit, err := s.execute(ctx, line)
		if err != nil && !kerrors.IsCancelled(err) {
			fmt.Fprintln(s.out, ui.Error.Sprint("Error:"), err)
		}
		if invErr := s.ctl.CheckInvariant(s.buf); invErr != nil {
			s.log.Errorf("%v", invErr)
		}
		if quit {
			return nil
		}
	}
}

func (s *Shell) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readBlock reads lines up to a line containing only ".".
func (s *Shell) readBlock() ([]string, error) {
	var lines []string
	for {
		line, err := s.readLine()
		if errors.Is(err, io.EOF) {
			return nil, kerrors.ErrCancelled
		}
		if err != nil {
			return nil, err
		}
		if line == "." {
			return lines, nil
		}
		lines = append(lines, line)
	}
}

func (s *Shell) execute(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]
	s.log.Debugf("Shell command %q", cmd)

	switch cmd {
	case "p":
		s.print()
	case "a":
		lines, err := s.readBlock()
		if err != nil {
			return false, err
		}
		return false, s.buf.Append(lines...)
	case "i":
		n, err := lineArg(args)
		if err != nil {
			return false, err
		}
		lines, err := s.readBlock()
		if err != nil {
			return false, err
		}
		return false, s.buf.Insert(n, lines...)
	case "c":
		n, err := lineArg(args)
		if err != nil {
			return false, err
		}
		text, err := s.readLine()
		if err != nil {
			return false, kerrors.ErrCancelled
		}
		return false, s.buf.Change(n, text)
	case "d":
		n, err := lineArg(args)
		if err != nil {
			return false, err
		}
		return false, s.buf.Delete(n)
	case "r":
		lines, err := s.readBlock()
		if err != nil {
			return false, err
		}
		return false, s.buf.SetText(lines)
	case "w":
		if err := s.buf.Save(ctx); err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, ui.Success.Sprint("✓"), "Wrote", ui.Path.Sprint(s.buf.Document().StoragePath))
	case "W":
		if err := s.ctl.EncryptedSaveAs(ctx, s.buf, strings.Join(args, " "), true); err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, ui.Success.Sprint("✓"), "Wrote", ui.Path.Sprint(s.buf.Document().StoragePath))
	case "o":
		if err := s.ctl.OpenEncrypted(ctx, s.buf); err != nil {
			return false, err
		}
		s.status()
	case "e":
		if err := s.ctl.Ordoify(ctx, s.buf); err != nil {
			return false, err
		}
		s.status()
	case "x":
		if err := s.ctl.Disable(ctx, s.buf); err != nil {
			return false, err
		}
		s.status()
	case "s":
		s.status()
	case "h", "?":
		s.help()
	case "q":
		if s.buf.Document().Dirty {
			ok, err := s.buf.Prompter().Confirm("Buffer modified; quit anyway?")
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case "Q":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (type h for help)", cmd)
	}
	return false, nil
}

func lineArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected one line number", kerrors.ErrInvalidLine)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", kerrors.ErrInvalidLine, args[0])
	}
	return n, nil
}

func (s *Shell) print() {
	for i, line := range s.buf.Lines() {
		fmt.Fprintf(s.out, "%s  %s\n", ui.Muted.Sprintf("%4d", i+1), line)
	}
}

func (s *Shell) status() {
	doc := s.buf.Document()
	path := doc.StoragePath
	if path == "" {
		path = "(no file)"
	}

	var flags []string
	if doc.Dirty {
		flags = append(flags, "modified")
	}
	if doc.ReadOnly {
		flags = append(flags, "read-only")
	}
	if len(flags) == 0 {
		flags = append(flags, "clean")
	}

	fmt.Fprintf(s.out, "%s %s %s %s\n",
		ui.Mode.Sprint(doc.Mode.String()),
		ui.Path.Sprint(path),
		ui.Muted.Sprint(doc.Format),
		strings.Join(flags, ","))
}

func (s *Shell) help() {
	fmt.Fprint(s.out, `Commands:
  p        print the buffer with line numbers
  a        append lines, end with a line containing only "."
  i N      insert lines before line N
  c N      change line N to the next input line
  d N      delete line N
  r        replace the whole buffer
  w        save
  W [PATH] save as PATH
  o        decrypt the buffer and turn on transparent encryption
  e        encrypt to a new file on the next save
  x        turn off transparent encryption
  s        show status
  q        quit, asking first if the buffer is modified
  Q        quit without asking
`)
}
