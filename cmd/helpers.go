package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"

	"github.com/PolarWolf314/ordo/internal/configs"
	"github.com/PolarWolf314/ordo/internal/prompt"
	"github.com/PolarWolf314/ordo/internal/ui"
	"github.com/PolarWolf314/ordo/internal/workflows"
)

func defaultPrompter() (*prompt.Lines, func() error, error) {
	return prompt.NewTerminal()
}

// openPrompter connects the prompts of a command to the user. Tests replace it.
var openPrompter = defaultPrompter

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		// If we can't set spinner color, just continue without it.
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		// Ensure final message ends with a newline.
		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		// Stop the spinner first to clear the spinner line.
		if quiet {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// spinnerPrompter pauses a spinner while the user answers a prompt.
type spinnerPrompter struct {
	prompt.Prompter
	spinner *spinner.Spinner
}

func withSpinner(p prompt.Prompter, s *spinner.Spinner) prompt.Prompter {
	return &spinnerPrompter{Prompter: p, spinner: s}
}

func (p *spinnerPrompter) pause() func() {
	if p.spinner == nil || !p.spinner.Active() {
		return func() {}
	}
	p.spinner.Stop()
	return p.spinner.Start
}

func (p *spinnerPrompter) Line(question, def string) (string, error) {
	defer p.pause()()
	return p.Prompter.Line(question, def)
}

func (p *spinnerPrompter) Char(question string) (rune, error) {
	defer p.pause()()
	return p.Prompter.Char(question)
}

func (p *spinnerPrompter) Confirm(question string) (bool, error) {
	defer p.pause()()
	return p.Prompter.Confirm(question)
}

func (p *spinnerPrompter) Passphrase(question string) ([]byte, error) {
	defer p.pause()()
	return p.Prompter.Passphrase(question)
}

func (p *spinnerPrompter) Printf(format string, args ...any) {
	defer p.pause()()
	p.Prompter.Printf(format, args...)
}

// newEnv builds the workflow environment for a one-shot command.
func newEnv(config *configs.Config, p prompt.Prompter) workflows.Env {
	return workflows.Env{
		Config:   config,
		Prompter: p,
		Log:      Logger,
	}
}

// closeQuietly runs closer and logs a failure instead of returning it.
func closeQuietly(closer func() error) {
	if closer == nil {
		return
	}
	if err := closer(); err != nil && err != io.EOF {
		Logger.Debugf("Failed to close terminal: %v", err)
	}
}
