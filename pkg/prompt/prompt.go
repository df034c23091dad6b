// Package prompt implements line-based terminal prompting for the
// interactive parts of the installer. Reader and writer are injected so the
// wizard is testable without a terminal; empty input and end-of-input both
// accept the offered default.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// IsInteractive reports whether stdin is attached to a terminal
func IsInteractive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Prompter asks questions on out and reads answers from in
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	styled bool
}

// New creates a Prompter. Styling is applied only when out is a terminal.
func New(in io.Reader, out io.Writer) *Prompter {
	styled := false
	if f, ok := out.(*os.File); ok {
		styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Prompter{
		in:     bufio.NewReader(in),
		out:    out,
		styled: styled,
	}
}

// readLine returns the next input line. ok is false on end of input.
func (p *Prompter) readLine() (string, bool) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (p *Prompter) ask(question, hint string) {
	q := question
	if p.styled {
		q = pterm.Bold.Sprint(question)
	}
	fmt.Fprintf(p.out, "%s %s ", q, hint)
}

// YesNo asks a yes/no question. Empty input, unrecognized input after
// retries, or end of input yields def.
func (p *Prompter) YesNo(question string, def bool) bool {
	hint := "[Y/n]"
	if !def {
		hint = "[y/N]"
	}

	for {
		p.ask(question, hint)
		answer, ok := p.readLine()
		if !ok || answer == "" {
			return def
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

// Text asks a free-text question. Empty input or end of input yields def.
func (p *Prompter) Text(question, def string) string {
	p.ask(question, fmt.Sprintf("[%s]", def))
	answer, ok := p.readLine()
	if !ok || answer == "" {
		return def
	}
	return answer
}

// Choice asks the user to pick one of options (matched case-insensitively).
// Empty input or end of input yields def.
func (p *Prompter) Choice(question string, options []string, def string) string {
	hint := fmt.Sprintf("(%s) [%s]", strings.Join(options, "/"), def)

	for {
		p.ask(question, hint)
		answer, ok := p.readLine()
		if !ok || answer == "" {
			return def
		}
		for _, option := range options {
			if strings.EqualFold(answer, option) {
				return option
			}
		}
		fmt.Fprintf(p.out, "Please answer one of: %s.\n", strings.Join(options, ", "))
	}
}
