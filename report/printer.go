package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/YuminosukeSato/clfreport/core/table"
)

// Printer writes the human-readable summaries. Titles are colored unless
// disabled; tables go through table.Render.
type Printer struct {
	w       io.Writer
	colored bool
	title   *color.Color
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, colored bool) *Printer {
	title := color.New(color.FgCyan, color.Bold)
	if colored {
		title.EnableColor()
	} else {
		title.DisableColor()
	}
	return &Printer{w: w, colored: colored, title: title}
}

// Title prints a section heading.
func (p *Printer) Title(s string) {
	_, _ = p.title.Fprintln(p.w, s)
}

// Printf prints a formatted line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

// Table renders t with 4 significant digits.
func (p *Printer) Table(t *table.Table) {
	t.Render(p.w, 4)
}

// Text prints s as is.
func (p *Printer) Text(s string) {
	_, _ = io.WriteString(p.w, s)
}
