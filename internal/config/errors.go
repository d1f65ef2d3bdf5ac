package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors.
// These errors are returned by Config.Validate() and the loaders in this
// package. Callers use errors.Is() to tell them apart.
var (
	// ErrFileNotExist is returned when a required local path (--checks or
	// --file) does not exist. It is always wrapped in a *MissingFileError.
	ErrFileNotExist = errors.New("file does not exist")

	// ErrNoSource is returned when neither --file nor --url is specified.
	ErrNoSource = errors.New("no input source: specify --file or --url")

	// ErrInvalidURL is returned when --url is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidFormat is returned when the report format is not one of
	// json, markdown or text.
	ErrInvalidFormat = errors.New("invalid report format: must be json, markdown or text")

	// ErrInvalidChecks is returned when the checks file is not a JSON array
	// of selector strings.
	ErrInvalidChecks = errors.New("invalid checks file")

	// ErrSettingsNotFound is returned when the settings file does not exist.
	ErrSettingsNotFound = errors.New("settings file not found")
)

// MissingFileError reports a required local file that does not exist.
// Its message is the one printed to the user before the process exits.
type MissingFileError struct {
	// Path is the path exactly as the user supplied it.
	Path string
}

// Error implements the error interface.
func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s does not exist. Exiting.", e.Path)
}

// Unwrap returns ErrFileNotExist so callers can use errors.Is.
func (e *MissingFileError) Unwrap() error {
	return ErrFileNotExist
}
