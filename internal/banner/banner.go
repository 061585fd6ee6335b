// Package banner prints the progress line shown before each deploy stage.
//
// Banners are the only diagnostic the deployer itself writes to stdout; they
// tell the reader which stage the following tool output belongs to.
package banner

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Prefix starts every banner line.
const Prefix = "==>"

// Printer writes stage banners to a writer.
type Printer struct {
	out     io.Writer
	marker  *color.Color
	counter *color.Color
	title   *color.Color
}

// Option configures a Printer.
type Option func(*Printer)

// WithColor forces colour output on or off regardless of the writer.
func WithColor(enabled bool) Option {
	return func(p *Printer) {
		p.setColor(enabled)
	}
}

// New creates a Printer writing to out. Colour is enabled only when out is
// a terminal and NO_COLOR is not set.
func New(out io.Writer, opts ...Option) *Printer {
	if out == nil {
		out = io.Discard
	}

	p := &Printer{
		out:     out,
		marker:  color.New(color.FgCyan, color.Bold),
		counter: color.New(color.FgYellow),
		title:   color.New(color.Bold),
	}

	p.setColor(isTerminal(out))

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Print writes the banner for stage number index (1-based) out of total.
func (p *Printer) Print(index, total int, text string) error {
	_, err := fmt.Fprintf(p.out, "%s %s %s\n",
		p.marker.Sprint(Prefix),
		p.counter.Sprintf("[%d/%d]", index, total),
		p.title.Sprint(text),
	)
	if err != nil {
		return fmt.Errorf("print banner: %w", err)
	}

	return nil
}

func (p *Printer) setColor(enabled bool) {
	for _, c := range []*color.Color{p.marker, p.counter, p.title} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

// isTerminal reports whether w is a colour-capable terminal.
func isTerminal(w io.Writer) bool {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
