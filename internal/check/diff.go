package check

import "sort"

// Direction summarizes how the pass count moved between two reports.
type Direction string

// Directions reported by Compare.
const (
	DirectionImproved  Direction = "improved"
	DirectionRegressed Direction = "regressed"
	DirectionUnchanged Direction = "unchanged"
)

// Diff is the difference between a previous and a current Report.
// Every slice is sorted ascending.
type Diff struct {
	// Fixed selectors failed before and pass now.
	Fixed []string `json:"fixed"`

	// Broken selectors passed before and fail now.
	Broken []string `json:"broken"`

	// Added selectors are only in the current report.
	Added []string `json:"added"`

	// Removed selectors are only in the previous report.
	Removed []string `json:"removed"`

	// Unchanged counts selectors present in both with the same result.
	Unchanged int `json:"unchanged"`

	PreviousPassed int `json:"previous_passed"`
	CurrentPassed  int `json:"current_passed"`

	Direction Direction `json:"direction"`
}

// Compare reports which selectors changed result between previous and current.
func Compare(previous, current *Report) *Diff {
	d := &Diff{
		Fixed:          make([]string, 0),
		Broken:         make([]string, 0),
		Added:          make([]string, 0),
		Removed:        make([]string, 0),
		PreviousPassed: len(previous.Passed()),
		CurrentPassed:  len(current.Passed()),
	}

	for _, sel := range current.Keys() {
		now, _ := current.Get(sel)
		before, ok := previous.Get(sel)
		switch {
		case !ok:
			d.Added = append(d.Added, sel)
		case before == now:
			d.Unchanged++
		case now:
			d.Fixed = append(d.Fixed, sel)
		default:
			d.Broken = append(d.Broken, sel)
		}
	}
	for _, sel := range previous.Keys() {
		if _, ok := current.Get(sel); !ok {
			d.Removed = append(d.Removed, sel)
		}
	}

	for _, s := range [][]string{d.Fixed, d.Broken, d.Added, d.Removed} {
		sort.Strings(s)
	}

	switch {
	case len(d.Broken) > 0 && len(d.Fixed) == 0:
		d.Direction = DirectionRegressed
	case len(d.Fixed) > 0 && len(d.Broken) == 0:
		d.Direction = DirectionImproved
	case d.CurrentPassed > d.PreviousPassed:
		d.Direction = DirectionImproved
	case d.CurrentPassed < d.PreviousPassed:
		d.Direction = DirectionRegressed
	default:
		d.Direction = DirectionUnchanged
	}

	return d
}

// Changed reports whether any selector was fixed, broken, added or removed.
func (d *Diff) Changed() bool {
	return len(d.Fixed)+len(d.Broken)+len(d.Added)+len(d.Removed) > 0
}
