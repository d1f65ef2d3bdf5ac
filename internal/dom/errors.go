package dom

import (
	"errors"
	"fmt"
)

// ErrInvalidSelector is returned when a selector cannot be compiled.
var ErrInvalidSelector = errors.New("invalid selector")

// SelectorError describes a selector that failed to compile.
type SelectorError struct {
	// Selector is the selector text as given.
	Selector string

	// Err is the compile error reported by cascadia.
	Err error
}

// Error implements the error interface.
func (e *SelectorError) Error() string {
	return fmt.Sprintf("invalid selector %q: %v", e.Selector, e.Err)
}

// Unwrap returns ErrInvalidSelector so callers can use errors.Is.
func (e *SelectorError) Unwrap() error {
	return ErrInvalidSelector
}
