package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// Printer writes status lines to an output stream.
type Printer struct {
	out    io.Writer
	styled bool
}

// NewPrinter returns a Printer writing to out. When styled is false no ANSI
// sequences are emitted.
func NewPrinter(out io.Writer, styled bool) *Printer {
	return &Printer{out: out, styled: styled}
}

// Stdout returns a Printer for os.Stdout, styled only on a terminal.
func Stdout() *Printer {
	return NewPrinter(os.Stdout, IsInteractiveTTY(os.Stdout))
}

// IsInteractiveTTY reports whether f is a terminal.
func IsInteractiveTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func (p *Printer) println(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

// Line prints msg unchanged.
func (p *Printer) Line(msg string) {
	p.println(msg)
}

// Title prints a heading.
func (p *Printer) Title(msg string) {
	p.println(p.render(titleStyle, msg))
}

// Step prints the start of a unit of work.
func (p *Printer) Step(msg string) {
	p.println(p.render(activeStyle, msg))
}

// Success prints a completed message.
func (p *Printer) Success(msg string) {
	p.println(p.render(successStyle, msg))
}

// Warn prints a notice that does not stop the run.
func (p *Printer) Warn(msg string) {
	p.println(p.render(warningStyle, msg))
}

// Detail prints a dimmed, indented line.
func (p *Printer) Detail(msg string) {
	p.println("  " + p.render(dimStyle, msg))
}

// Row prints a check result: a status mark, the name and optional extra text.
func (p *Printer) Row(name string, ok bool, extra string) {
	mark := p.render(successStyle, checkMark)
	if !ok {
		mark = p.render(failedStyle, crossMark)
	}
	line := fmt.Sprintf("  %s  %-10s", mark, name)
	if extra != "" {
		line += " " + p.render(dimStyle, extra)
	}
	p.println(strings.TrimRight(line, " "))
}

// OptionalRow is Row for checks whose failure is only a warning.
func (p *Printer) OptionalRow(name string, ok bool, extra string) {
	if ok {
		p.Row(name, true, extra)
		return
	}
	line := fmt.Sprintf("  %s  %-10s", p.render(warningStyle, warnMark), name)
	if extra != "" {
		line += " " + p.render(dimStyle, extra)
	}
	p.println(strings.TrimRight(line, " "))
}

// FormatBytes renders n as a human readable size, e.g. "2.4 GB".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// FormatDuration rounds d for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}
