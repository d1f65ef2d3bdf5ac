package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadChecks reads the checks file at path and returns the selectors in
// the order they are listed. The file must contain a JSON array of strings,
// for example ["h1#title", "div.container"].
//
// A missing file yields a *MissingFileError. Malformed JSON, or JSON that
// is not an array of strings, yields an error wrapping ErrInvalidChecks.
func LoadChecks(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided checks path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingFileError{Path: path}
		}
		return nil, fmt.Errorf("failed to read checks file %s: %w", path, err)
	}

	var checks []string
	if err := json.Unmarshal(data, &checks); err != nil {
		return nil, fmt.Errorf("%w: failed to parse checks file %s: %v", ErrInvalidChecks, path, err)
	}

	// A JSON null decodes into a nil slice without error.
	if checks == nil {
		return nil, fmt.Errorf("%w: %s must contain a JSON array of selectors", ErrInvalidChecks, path)
	}

	return checks, nil
}
