// Package report renders selector check results.
//
// Three formats are available:
//   - JSONWriter: the selector to boolean object, indented with four spaces
//   - MarkdownWriter: a table with summary counts for sharing in reviews
//   - SimpleWriter: PASS/FAIL lines for terminal display
//
// Writers implement the Writer interface so the CLI can pick one by name
// with NewWriter.
package report
