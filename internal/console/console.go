// ABOUTME: User-facing console messages with success/failure markers
// ABOUTME: Colors are applied only when the output is a terminal

// Package console prints the messages a user reads after an export.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed)
	pathColor    = color.New(color.FgYellow)
)

// Printer writes markers and messages to a single writer
type Printer struct {
	out io.Writer
}

// New creates a Printer writing to out, or the color-aware stdout when out is nil
func New(out io.Writer) *Printer {
	if out == nil {
		out = color.Output
	}
	return &Printer{out: out}
}

// Success prints a ✅ line
func (p *Printer) Success(format string, args ...interface{}) {
	successColor.Fprintf(p.out, "✅ "+format+"\n", args...)
}

// Failure prints a ❌ line
func (p *Printer) Failure(format string, args ...interface{}) {
	failureColor.Fprintf(p.out, "❌ "+format+"\n", args...)
}

// Detail prints diagnostic text verbatim, ensuring a trailing newline
func (p *Printer) Detail(text string) {
	if text == "" {
		return
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	fmt.Fprint(p.out, text)
}

// SuccessWithPath prints a ✅ line ending in a highlighted path. The segments
// are colored one after another since a nested reset would end the green early.
func (p *Printer) SuccessWithPath(message, path string) {
	successColor.Fprint(p.out, "✅ "+message+" ")
	pathColor.Fprint(p.out, path)
	fmt.Fprintln(p.out)
}
