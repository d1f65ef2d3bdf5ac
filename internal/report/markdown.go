package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/htmlgrader/internal/check"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown, built with
// nao1215/markdown.
type MarkdownWriter struct {
	baseWriter
	meta Meta
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, meta Meta) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		meta:       meta,
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *check.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeResults(md, report)
	w.writeInvalid(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the document information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *check.Report) {
	md.H1("HTML Grader Report")
	md.PlainText("")

	rows := [][]string{}
	if w.meta.Location != "" {
		rows = append(rows, []string{"Document", "`" + w.meta.Location + "`"})
	}
	if w.meta.Title != "" {
		rows = append(rows, []string{"Title", escapeCell(w.meta.Title)})
	}
	if w.meta.ChecksPath != "" {
		rows = append(rows, []string{"Checks", "`" + w.meta.ChecksPath + "`"})
	}
	if !w.meta.CheckedAt.IsZero() {
		rows = append(rows, []string{"Checked At", w.meta.CheckedAt.Format("2006-01-02 15:04:05 MST")})
	}
	rows = append(rows, []string{"Status", statusText(report)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the pass/fail counts, a pie chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *check.Report) {
	passed := len(report.Passed())
	failed := len(report.Failed())

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Result", "Count"},
		Rows: [][]string{
			{"✅ Pass", strconv.Itoa(passed)},
			{"❌ Fail", strconv.Itoa(failed)},
			{"**Total**", "**" + strconv.Itoa(report.Len()) + "**"},
		},
	})
	md.PlainText("")

	if report.Len() > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Selector Results"),
			piechart.WithShowData(true),
		)
		if passed > 0 {
			chart.LabelAndIntValue("Pass", uint64(passed))
		}
		if failed > 0 {
			chart.LabelAndIntValue("Fail", uint64(failed))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case report.Len() == 0:
		md.Note("The checks file contains no selectors.")
	case report.AllPassed():
		md.Tip("Every selector matched at least one element.")
	default:
		md.Warningf("%d of %d selector(s) matched nothing.", failed, report.Len())
	}
	md.PlainText("")
}

// writeResults writes one table row per selector in report order.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, report *check.Report) {
	md.H2("Results")
	md.PlainText("")

	if report.Len() == 0 {
		md.PlainText("No selectors were checked.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, report.Len())
	for _, sel := range report.Keys() {
		present, _ := report.Get(sel)
		result := "FAIL"
		if present {
			result = "PASS"
		}
		rows = append(rows, []string{"`" + escapeCell(sel) + "`", result})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Selector", "Result"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeInvalid lists selectors that could not be compiled.
func (w *MarkdownWriter) writeInvalid(md *markdown.Markdown, report *check.Report) {
	invalid := report.Invalid()
	if len(invalid) == 0 {
		return
	}

	md.H2("Invalid Selectors")
	md.PlainText("")
	md.Cautionf("%d selector(s) could not be parsed and were counted as failures.", len(invalid))
	md.PlainText("")

	items := make([]string, 0, len(invalid))
	for _, sel := range invalid {
		items = append(items, "`"+sel+"`")
	}
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [htmlgrader](https://github.com/nao1215/htmlgrader)*")
}

// statusText summarizes the overall outcome.
func statusText(report *check.Report) string {
	if report.AllPassed() {
		return "✅ Passed"
	}
	return "❌ Failed"
}

// escapeCell keeps table cell content from breaking the table layout.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
