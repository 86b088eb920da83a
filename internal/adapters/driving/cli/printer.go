package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// printer writes status lines for command output. Colours follow NO_COLOR
// and terminal detection in fatih/color.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

// Success prints a green line with a checkmark.
func (p *printer) Success(format string, a ...any) {
	_, _ = green.Fprintf(p.w, "✓ %s\n", fmt.Sprintf(format, a...))
}

// Warning prints a yellow line.
func (p *printer) Warning(format string, a ...any) {
	_, _ = yellow.Fprintf(p.w, "! %s\n", fmt.Sprintf(format, a...))
}

// Step prints a cyan progress line.
func (p *printer) Step(format string, a ...any) {
	_, _ = cyan.Fprintf(p.w, "→ %s\n", fmt.Sprintf(format, a...))
}

// Failure prints a red title with optional suggestions.
func (p *printer) Failure(title string, suggestions ...string) {
	_, _ = red.Fprintf(p.w, "✗ %s\n", title)
	for _, s := range suggestions {
		fmt.Fprintf(p.w, "  %s\n", s)
	}
}

// Info prints a plain line.
func (p *printer) Info(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(p.w, msg)
}
