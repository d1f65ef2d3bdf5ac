package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/htmlgrader/internal/check"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	meta Meta

	// failedOnly hides passing selectors.
	failedOnly bool

	title cases.Caser
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithMeta sets the run information printed in the header.
func WithMeta(meta Meta) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.meta = meta
	}
}

// WithFailedOnly lists only the selectors that matched nothing.
func WithFailedOnly(failedOnly bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.failedOnly = failedOnly
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		title:      cases.Title(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *check.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeResults(&sb, report)
	w.writeInvalid(&sb, report)
	w.writeSummary(&sb, report)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, name string) {
	sb.WriteString(strings.Repeat("-", 60))
	sb.WriteString("\n")
	sb.WriteString(w.title.String(name))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 60))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *check.Report) {
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	sb.WriteString(w.title.String("html grader report"))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")

	if w.meta.Location != "" {
		fmt.Fprintf(sb, "Document:   %s\n", w.meta.Location)
	}
	if w.meta.Title != "" {
		fmt.Fprintf(sb, "Title:      %s\n", w.meta.Title)
	}
	if w.meta.ChecksPath != "" {
		fmt.Fprintf(sb, "Checks:     %s\n", w.meta.ChecksPath)
	}
	if !w.meta.CheckedAt.IsZero() {
		fmt.Fprintf(sb, "Checked At: %s\n", w.meta.CheckedAt.Format("2006-01-02 15:04:05 MST"))
	}
	if report.AllPassed() {
		sb.WriteString("Status:     PASSED\n")
	} else {
		sb.WriteString("Status:     FAILED\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeResults(sb *strings.Builder, report *check.Report) {
	w.writeSection(sb, "selector results")

	if report.Len() == 0 {
		sb.WriteString("  No selectors checked\n\n")
		return
	}

	for _, sel := range report.Keys() {
		present, _ := report.Get(sel)
		if present && w.failedOnly {
			continue
		}
		label := "FAIL"
		if present {
			label = "PASS"
		}
		fmt.Fprintf(sb, "  [%s] %s\n", label, sel)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeInvalid(sb *strings.Builder, report *check.Report) {
	invalid := report.Invalid()
	if len(invalid) == 0 {
		return
	}

	w.writeSection(sb, "invalid selectors")
	for _, sel := range invalid {
		fmt.Fprintf(sb, "  [!] %s: %v\n", sel, report.InvalidError(sel))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *check.Report) {
	w.writeSection(sb, "summary")
	fmt.Fprintf(sb, "  PASSED: %d\n", len(report.Passed()))
	fmt.Fprintf(sb, "  FAILED: %d\n", len(report.Failed()))
	fmt.Fprintf(sb, "  TOTAL:  %d\n", report.Len())
}
