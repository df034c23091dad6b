package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
)

var bannerStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 2)

// Printer writes installer status lines in the detected format
type Printer struct {
	out    io.Writer
	format Format
}

// NewPrinter creates a Printer for out. FormatAuto is resolved against out
// when it is a file, otherwise it degrades to plain text.
func NewPrinter(out io.Writer, format Format) *Printer {
	if format == FormatAuto {
		if f, ok := out.(*os.File); ok {
			format = DetectFormat(f)
		} else {
			format = FormatText
		}
	}
	return &Printer{out: out, format: format}
}

func (p *Printer) styled() bool {
	return p.format == FormatTerminal
}

// Step prints a progress line for a phase of the install
func (p *Printer) Step(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if p.styled() {
		pterm.Info.WithWriter(p.out).Println(msg)
		return
	}
	fmt.Fprintf(p.out, "--> %s\n", msg)
}

// Success prints a completion line
func (p *Printer) Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if p.styled() {
		pterm.Success.WithWriter(p.out).Println(msg)
		return
	}
	fmt.Fprintf(p.out, "OK  %s\n", msg)
}

// Warning prints a non-fatal problem
func (p *Printer) Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if p.styled() {
		pterm.Warning.WithWriter(p.out).Println(msg)
		return
	}
	fmt.Fprintf(p.out, "WARN %s\n", msg)
}

// Error prints a fatal problem
func (p *Printer) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if p.styled() {
		pterm.Error.WithWriter(p.out).Println(msg)
		return
	}
	fmt.Fprintf(p.out, "ERROR %s\n", msg)
}

// Plain prints msg with no decoration in any format
func (p *Printer) Plain(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Banner prints the framed header shown at the start of a run
func (p *Printer) Banner(title, subtitle string) {
	if p.styled() {
		body := pterm.Bold.Sprint(title)
		if subtitle != "" {
			body += "\n" + subtitle
		}
		fmt.Fprintln(p.out, bannerStyle.Render(body))
		return
	}
	fmt.Fprintln(p.out, title)
	if subtitle != "" {
		fmt.Fprintln(p.out, subtitle)
	}
}
