// Package diag formats compiler diagnostic logs for human readers. A
// diag.Writer is an io.Writer intended to be passed as the log sink of a
// compile: it classifies each log line and colorizes errors, warnings, and
// notes. Color is suppressed automatically when the destination is not a
// terminal (see the fatih/color package's NoColor handling).
package diag

import (
	"bytes"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	noteColor    = color.New(color.FgCyan)
)

// Writer colorizes compiler diagnostic text line by line. It buffers
// partial lines across Write calls; call Flush after the final Write to
// emit any unterminated line.
type Writer struct {
	w       io.Writer
	partial bytes.Buffer
}

// NewWriter returns a Writer that emits classified log lines to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write implements io.Writer. If the underlying writer fails mid-stream,
// the reported count covers only the bytes of p whose lines were actually
// emitted; the failed line stays buffered, so a later Write or Flush
// retries it.
func (d *Writer) Write(p []byte) (int, error) {
	carried := d.partial.Len()
	d.partial.Write(p)
	written := 0
	for {
		line, err := d.partial.ReadString('\n')
		if err != nil {
			// Unterminated remainder: keep it buffered for the next write.
			d.partial.Reset()
			d.partial.WriteString(line)
			break
		}
		if werr := d.writeLine(strings.TrimSuffix(line, "\n")); werr != nil {
			rest := d.partial.String()
			d.partial.Reset()
			d.partial.WriteString(line)
			d.partial.WriteString(rest)
			n := written - carried
			if n < 0 {
				n = 0
			}
			if n > len(p) {
				n = len(p)
			}
			return n, werr
		}
		written += len(line)
	}
	return len(p), nil
}

// Flush writes any buffered unterminated line.
func (d *Writer) Flush() error {
	if d.partial.Len() == 0 {
		return nil
	}
	line := d.partial.String()
	d.partial.Reset()
	return d.writeLine(line)
}

func (d *Writer) writeLine(line string) error {
	var err error
	switch classify(line) {
	case sevError:
		_, err = errorColor.Fprintln(d.w, line)
	case sevWarning:
		_, err = warningColor.Fprintln(d.w, line)
	case sevNote:
		_, err = noteColor.Fprintln(d.w, line)
	default:
		_, err = io.WriteString(d.w, line+"\n")
	}
	return err
}

type severity int

const (
	sevPlain severity = iota
	sevError
	sevWarning
	sevNote
)

// classify matches the "file(line): severity:" shape of backend
// diagnostics, without requiring it.
func classify(line string) severity {
	switch {
	case strings.Contains(line, "error:") || strings.Contains(line, "fatal:"):
		return sevError
	case strings.Contains(line, "warning:"):
		return sevWarning
	case strings.Contains(line, "note:") || strings.Contains(line, "remark:"):
		return sevNote
	default:
		return sevPlain
	}
}
