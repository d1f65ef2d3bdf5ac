package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nao1215/htmlgrader/internal/check"
)

// ErrUnknownFormat is returned by NewWriter for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *check.Report) (int, error)
}

// Meta describes the run that produced a report. The JSON writer ignores it;
// the Markdown and text writers print it as a header.
type Meta struct {
	// Location is the file path or URL that was checked.
	Location string

	// Title is the document's <title>, if any.
	Title string

	// ChecksPath is the checks file the selectors came from.
	ChecksPath string

	// CheckedAt is when the evaluation finished.
	CheckedAt time.Time
}

// NewWriter returns the Writer for format ("json", "markdown" or "text").
// meta is passed to writers that print a header.
func NewWriter(format string, output io.Writer, meta Meta) (Writer, error) {
	switch format {
	case "", "json":
		return NewJSONWriter(output), nil
	case "markdown", "md":
		return NewMarkdownWriter(output, meta), nil
	case "text", "simple":
		return NewSimpleWriter(output, WithMeta(meta)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *check.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter counts bytes written through it.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
