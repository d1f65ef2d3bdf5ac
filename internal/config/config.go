package config

import (
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultChecksFile is the checks file used when --checks is not given.
	DefaultChecksFile = "checks.json"

	// DefaultTimeout bounds a remote fetch, including reading the body.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies htmlgrader in HTTP requests.
	DefaultUserAgent = "htmlgrader/1.0 (+https://github.com/nao1215/htmlgrader)"

	// DefaultMaxBodySize limits the response body read from a remote
	// document. Larger bodies are truncated.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "htmlgrader"
)

// Report formats accepted by --format.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// Config holds all configuration options for a single htmlgrader run.
// It is populated from CLI flags and the optional settings file and passed
// explicitly to every component; there is no package-level state.
type Config struct {
	// ChecksPath is the path to the checks file, a JSON array of selectors.
	ChecksPath string

	// File is the path to a local HTML document.
	// When set it takes precedence over URL.
	File string

	// URL is the remote location of an HTML document.
	// It is only used when File is empty.
	URL string

	// Format selects the report writer: json (default), markdown or text.
	Format string

	// ReportFile is the output file path for the report.
	// When empty, the report is written to stdout.
	ReportFile string

	// Timeout bounds the remote fetch.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with the remote fetch.
	UserAgent string

	// Headers are extra HTTP headers sent with the remote fetch.
	Headers map[string]string

	// Proxy is an optional proxy URL (e.g. socks5://127.0.0.1:9050)
	// used for the remote fetch.
	Proxy string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// SettingsPath is the path to the YAML settings file.
	// If empty, .htmlgrader is searched in the current and home directory.
	SettingsPath string

	// Verbose enables debug logging.
	Verbose bool

	// Strict makes the run fail with a distinct exit status when any
	// selector is absent.
	Strict bool

	// SaveToDB stores the run in the history database under DBDir.
	SaveToDB bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/htmlgrader on Linux).
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ChecksPath:  DefaultChecksFile,
		Format:      FormatJSON,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		Headers:     make(map[string]string),
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for htmlgrader.
// On Linux: ~/.local/share/htmlgrader
// On macOS: ~/Library/Application Support/htmlgrader
// On Windows: %LOCALAPPDATA%\htmlgrader
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// SourceType reports which document source the configuration selects:
// "file", "url", or "" when neither is set. File wins over URL.
func (c *Config) SourceType() string {
	switch {
	case c.File != "":
		return "file"
	case c.URL != "":
		return "url"
	default:
		return ""
	}
}

// Validate checks if the configuration is valid.
// It returns the first problem found. Required local files are checked
// here, before any document is resolved or parsed, so a missing file never
// results in a partial report.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	switch c.Format {
	case FormatJSON, FormatMarkdown, FormatText:
	default:
		return ErrInvalidFormat
	}

	if err := AssertFileExists(c.ChecksPath); err != nil {
		return err
	}

	switch c.SourceType() {
	case "file":
		return AssertFileExists(c.File)
	case "url":
		return validateURL(c.URL)
	default:
		return ErrNoSource
	}
}

// AssertFileExists returns a *MissingFileError when path does not exist.
func AssertFileExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &MissingFileError{Path: path}
		}
		return err
	}
	return nil
}

// validateURL accepts only absolute http and https URLs with a host.
func validateURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
