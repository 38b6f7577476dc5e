package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mitchellh/cli"
	"github.com/mitchellh/colorstring"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Prompter = (*Prompter)(nil)

// maxAttempts bounds how often an invalid answer is asked again.
const maxAttempts = 5

// Prompter implements driven.Prompter on a cli.Ui.
type Prompter struct {
	ui    cli.Ui
	color *colorstring.Colorize
}

// NewPrompter creates a Prompter. Color is used only when enabled is true.
func NewPrompter(ui cli.Ui, color bool) *Prompter {
	return &Prompter{
		ui: ui,
		color: &colorstring.Colorize{
			Colors:  colorstring.DefaultColors,
			Disable: !color,
		},
	}
}

// NewTerminalPrompter creates a Prompter on the given streams. Color is
// enabled when out is a terminal and noColor is false.
func NewTerminalPrompter(in io.Reader, out, errOut io.Writer, noColor bool) *Prompter {
	ui := &cli.BasicUi{
		Reader:      in,
		Writer:      out,
		ErrorWriter: errOut,
	}
	return NewPrompter(ui, !noColor && isTerminal(out))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColor switches colored output on or off.
func (p *Prompter) SetColor(enabled bool) {
	p.color.Disable = !enabled
}

func (p *Prompter) Say(msg string) {
	p.ui.Output(msg)
}

func (p *Prompter) Ask(query string) (string, error) {
	return p.ui.Ask(query)
}

func (p *Prompter) AskSecret(query string) (string, error) {
	return p.ui.AskSecret(query)
}

// AskYesNo accepts y, yes, n and no in any case. An empty answer takes def;
// without a default the question is repeated.
func (p *Prompter) AskYesNo(query string, def *bool) (bool, error) {
	hint := "[yn]"
	if def != nil {
		if *def {
			hint = "[Yn]"
		} else {
			hint = "[yN]"
		}
	}

	for range maxAttempts {
		answer, err := p.ui.Ask(p.paint("[bold]", query) + " " + hint)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		case "":
			if def != nil {
				return *def, nil
			}
		}
		p.ui.Output("Please answer yes or no.")
	}
	return false, errors.New("no valid answer given")
}

// AskChoice lists choices numbered from 1 and reads the number of the
// selected one. An empty answer takes def.
func (p *Prompter) AskChoice(query string, choices []string, def int) (int, error) {
	if len(choices) == 0 {
		return 0, errors.New("no choices to pick from")
	}

	p.ui.Output(p.paint("[bold]", query))
	for i, c := range choices {
		p.ui.Output(fmt.Sprintf("  %d) %s", i+1, c))
	}

	prompt := "Choose an option:"
	if def >= 0 && def < len(choices) {
		prompt = fmt.Sprintf("Choose an option [%d]:", def+1)
	}

	for range maxAttempts {
		answer, err := p.ui.Ask(prompt)
		if err != nil {
			return 0, err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" && def >= 0 && def < len(choices) {
			return def, nil
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(choices) {
			return n - 1, nil
		}
		p.ui.Output(fmt.Sprintf("Please enter a number between 1 and %d.", len(choices)))
	}
	return 0, errors.New("no valid choice given")
}

// Success prints msg in green.
func (p *Prompter) Success(msg string) {
	p.ui.Output(p.paint("[green]", msg))
}

// Error prints msg in red on the error stream.
func (p *Prompter) Error(msg string) {
	p.ui.Error(p.paint("[red]", msg))
}

// paint wraps msg in a color code. msg is not interpreted, so brackets in
// registry responses are printed as is.
func (p *Prompter) paint(code, msg string) string {
	return p.color.Color(code) + msg + p.color.Color("[reset]")
}
