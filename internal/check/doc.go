// Package check evaluates a list of CSS selectors against a parsed document
// and builds the resulting Report.
//
// Evaluation is a pure transformation: selectors are sorted ascending,
// each one is queried once, and the Report records whether at least one
// element matched. Keys of the Report are unique and always serialised in
// sorted order, so the output is byte-identical for any input order.
//
// A selector that fails to compile counts as absent (false). It is kept in
// the Report and additionally listed by Report.Invalid.
package check
