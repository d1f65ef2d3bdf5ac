package report

import (
	"io"

	"github.com/nao1215/htmlgrader/internal/check"
)

// DefaultIndent is the indentation used by JSONWriter unless overridden.
const DefaultIndent = "    "

// JSONWriter outputs the report as a JSON object of selector to boolean.
// Keys appear in report order, which is ascending selector order.
type JSONWriter struct {
	baseWriter

	// indent is the string used for each nesting level.
	// An empty indent produces compact output.
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent sets the indentation string. Use "" for compact output.
func WithIndent(indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = indent
	}
}

// WithCompact disables indentation.
func WithCompact() JSONWriterOption {
	return WithIndent("")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
		indent:     DefaultIndent,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report followed by a newline.
func (w *JSONWriter) Write(report *check.Report) (int, error) {
	cw := &countingWriter{w: w.output}
	if err := check.WriteJSON(cw, report, w.indent); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}
