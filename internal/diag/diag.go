// Package diag provides the diagnostics sink injected into pipeline
// stages. Stages never configure global logging; they report through
// whatever sink the caller hands them.
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Sink receives diagnostics from pipeline stages.
type Sink interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Console writes colored diagnostics to a writer (normally stderr).
type Console struct {
	W       io.Writer
	Colored bool
}

// NewConsole creates a console sink.
func NewConsole(w io.Writer, colored bool) *Console {
	return &Console{W: w, Colored: colored}
}

func (c *Console) Infof(format string, args ...any) {
	if c.Colored {
		fmt.Fprintln(c.W, color.CyanString(format, args...))
		return
	}
	fmt.Fprintf(c.W, format+"\n", args...)
}

func (c *Console) Warnf(format string, args ...any) {
	if c.Colored {
		fmt.Fprintln(c.W, color.YellowString(format, args...))
		return
	}
	fmt.Fprintf(c.W, "WARNING: "+format+"\n", args...)
}

func (c *Console) Errorf(format string, args ...any) {
	if c.Colored {
		fmt.Fprintln(c.W, color.RedString(format, args...))
		return
	}
	fmt.Fprintf(c.W, "ERROR: "+format+"\n", args...)
}

// Discard swallows all diagnostics. Useful in tests and as the
// default when the caller passes a nil sink.
type Discard struct{}

func (Discard) Infof(string, ...any)  {}
func (Discard) Warnf(string, ...any)  {}
func (Discard) Errorf(string, ...any) {}
