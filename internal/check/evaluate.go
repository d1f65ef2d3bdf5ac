package check

import (
	"errors"
	"io"
	"sort"

	"github.com/nao1215/htmlgrader/internal/dom"
)

// Querier counts the elements of a document that match a selector.
// *dom.Document implements it.
type Querier interface {
	Count(selector string) (int, error)
}

// Evaluate checks every selector against doc and returns the Report.
//
// The selectors are sorted ascending before evaluation; the caller's slice
// is not modified. Duplicates collapse into a single key. A selector that
// fails to compile (dom.ErrInvalidSelector) is recorded as false and listed
// by Report.Invalid. Any other query error aborts the evaluation and is
// returned with a nil Report.
func Evaluate(doc Querier, selectors []string) (*Report, error) {
	sorted := SortSelectors(selectors)

	report := NewReport()
	for _, sel := range sorted {
		if _, done := report.Get(sel); done {
			continue
		}
		n, err := doc.Count(sel)
		if err != nil {
			if !errors.Is(err, dom.ErrInvalidSelector) {
				return nil, err
			}
			report.markInvalid(sel, err)
			report.Set(sel, false)
			continue
		}
		report.Set(sel, n >= 1)
	}
	return report, nil
}

// Run evaluates selectors against doc and writes the report to w as JSON
// with four-space indentation. Nothing is written when evaluation fails.
func Run(doc Querier, selectors []string, w io.Writer) (*Report, error) {
	report, err := Evaluate(doc, selectors)
	if err != nil {
		return nil, err
	}
	if err := WriteJSON(w, report, "    "); err != nil {
		return nil, err
	}
	return report, nil
}

// SortSelectors returns a sorted copy of selectors.
func SortSelectors(selectors []string) []string {
	sorted := make([]string, len(selectors))
	copy(sorted, selectors)
	sort.Strings(sorted)
	return sorted
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
