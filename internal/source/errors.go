package source

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch is matched by every *FetchError.
	ErrFetch = errors.New("fetch failed")

	// ErrHTTPStatus is returned (wrapped in a *FetchError) when the server
	// answers with a non-2xx status.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrInvalidProxy is returned when the proxy URL cannot be used.
	// Supported schemes are http, https, socks5 and socks5h.
	ErrInvalidProxy = errors.New("invalid proxy url")
)

// FetchError reports a remote document that could not be retrieved.
// Its message is the one printed to the user before the process exits;
// the underlying cause is available through errors.Is / errors.As.
type FetchError struct {
	// URL is the URL that was requested.
	URL string

	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("%s does not work. Exiting.", e.URL)
}

// Unwrap exposes both ErrFetch and the underlying cause.
func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}
